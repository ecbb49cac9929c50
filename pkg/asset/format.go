package asset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/accuknox/cspm-mcp/pkg/client"
)

const separator = "======================================================================"

// formatAssetList renders an asset page as a human-readable report
func formatAssetList(assets []map[string]interface{}, totalCount int, detailed bool) string {
	if len(assets) == 0 {
		return "No assets found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d assets (Total: %d):\n\n", len(assets), totalCount)

	for idx, asset := range assets {
		fmt.Fprintf(&b, "%s\nAsset #%d\n%s\n", separator, idx+1, separator)

		fmt.Fprintf(&b, "Name: %s\n", stringField(asset, "name", "Unnamed"))
		fmt.Fprintf(&b, "ID: %s\n", stringField(asset, "id", "N/A"))

		typeName, typeCategory := assetType(asset)
		fmt.Fprintf(&b, "Type: %s", typeName)
		if typeCategory != "" {
			fmt.Fprintf(&b, " (Category: %s)", typeCategory)
		}
		fmt.Fprintf(&b, "\nRegion: %s\n", stringField(asset, "region", "N/A"))

		if detailed {
			if label, ok := asset["label"].(map[string]interface{}); ok {
				fmt.Fprintf(&b, "Label: %s\n", stringField(label, "name", "N/A"))
			}
			if vulns := vulnerabilityCounts(asset); vulns != "" {
				fmt.Fprintf(&b, "Vulnerabilities: %s\n", vulns)
			}
		}

		b.WriteString("\n")
	}

	return b.String()
}

// assetType extracts the type name and category, accepting both the
// nested object and the flat field forms the backend has used.
func assetType(asset map[string]interface{}) (string, string) {
	if typed, ok := asset["type"].(map[string]interface{}); ok {
		return stringField(typed, "name", "Unknown"), stringField(typed, "category", "")
	}
	return stringField(asset, "type_name", "Unknown"), stringField(asset, "type_category", "")
}

// vulnerabilityCounts renders the non-zero vulnerability counters of an
// asset, sorted by severity name for stable output.
func vulnerabilityCounts(asset map[string]interface{}) string {
	vulns, ok := asset["vulnerabilities"].(map[string]interface{})
	if !ok || len(vulns) == 0 {
		return ""
	}

	severities := make([]string, 0, len(vulns))
	for severity := range vulns {
		severities = append(severities, severity)
	}
	sort.Strings(severities)

	var parts []string
	for _, severity := range severities {
		if count, ok := numericValue(vulns[severity]); ok && count > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", severity, count))
		}
	}

	return strings.Join(parts, ", ")
}

// formatModelVulnerabilities renders the AI/ML model issues summary
func formatModelVulnerabilities(summary *client.ModelIssuesSummary) string {
	var b strings.Builder

	b.WriteString("AI/ML Model Security Vulnerabilities\n")
	b.WriteString(separator + "\n\n")
	fmt.Fprintf(&b, "Summary: %d total issues\n", summary.Total)
	fmt.Fprintf(&b, "  ML Models: %d\n", summary.MLTotal)
	fmt.Fprintf(&b, "  LLM Models: %d\n", summary.LLMTotal)
	fmt.Fprintf(&b, "  Datasets: %d\n\n", summary.DatasetTotal)

	writeSeveritySection(&b, "ML Model Issues", summary.MLModelIssues)
	writeSeveritySection(&b, "LLM Model Issues", summary.LLMModelIssues)
	writeSeveritySection(&b, "Dataset Issues", summary.DatasetIssues)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeSeveritySection(b *strings.Builder, title string, issues []client.SeverityCount) {
	if len(issues) == 0 {
		return
	}

	fmt.Fprintf(b, "%s:\n", title)
	for _, issue := range issues {
		severity := issue.Severity
		if severity == "" {
			severity = "Unknown"
		}
		fmt.Fprintf(b, "  %s: %d\n", severity, issue.Count)
	}
	b.WriteString("\n")
}

// formatModelStats renders deployed vs not-deployed model statistics
func formatModelStats(stats *client.ModelStats) string {
	deployed := stats.Data.Deployed["true"]
	notDeployed := stats.Data.Deployed["false"]
	total := deployed + notDeployed

	var b strings.Builder
	b.WriteString("AI Model Deployment Statistics\n")
	b.WriteString(separator + "\n\n")
	fmt.Fprintf(&b, "Total Models Tracked: %d\n", total)
	fmt.Fprintf(&b, "Deployed Models: %d\n", deployed)
	fmt.Fprintf(&b, "Not Deployed: %d\n", notDeployed)

	if llmCount := stats.Data.ModeType["LLM"]; llmCount > 0 {
		fmt.Fprintf(&b, "\nModel Types:\n  LLM (Large Language Models): %d\n", llmCount)
	}

	return b.String()
}

func stringField(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func numericValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
