package asset

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/accuknox/cspm-mcp/pkg/client"
)

const dateFormat = "2006-01-02"

// Backend is the slice of the CSPM client the asset service depends on
type Backend interface {
	Assets(ctx context.Context, q client.AssetQuery) (*client.AssetPage, error)
	ModelIssuesSummary(ctx context.Context) (*client.ModelIssuesSummary, error)
	ModelStats(ctx context.Context, lastSeenAfter, lastSeenBefore int64) (*client.ModelStats, error)
}

// Service answers asset search and AI/ML model summary requests
type Service struct {
	backend Backend
	logger  *logrus.Logger

	now func() time.Time
}

// NewService creates a new asset service
func NewService(backend Backend, logger *logrus.Logger) *Service {
	return &Service{
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// SearchOptions are the caller-supplied asset search filters
type SearchOptions struct {
	AssetID             string
	TypeName            string
	TypeCategory        string
	LabelName           string
	Region              string
	CloudProvider       string
	ReturnType          string // list or count
	Limit               int
	Detailed            bool
	PresentOnDateAfter  string
	PresentOnDateBefore string
}

// Search runs an asset search and returns a formatted report. When no
// presence window is given, the last two days are assumed.
func (s *Service) Search(ctx context.Context, opts SearchOptions) (string, error) {
	after := opts.PresentOnDateAfter
	before := opts.PresentOnDateBefore

	now := s.now()
	if after == "" {
		after = now.AddDate(0, 0, -2).Format(dateFormat)
	}
	if before == "" {
		before = now.Format(dateFormat)
	}

	for _, date := range []string{after, before} {
		if _, err := time.Parse(dateFormat, date); err != nil {
			return "", fmt.Errorf("invalid date %q; expected format YYYY-MM-DD", date)
		}
	}

	query := client.AssetQuery{
		AssetID:             opts.AssetID,
		TypeName:            opts.TypeName,
		TypeCategory:        opts.TypeCategory,
		LabelName:           opts.LabelName,
		Region:              opts.Region,
		CloudProvider:       opts.CloudProvider,
		PresentOnDateAfter:  after,
		PresentOnDateBefore: before,
		Page:                1,
	}

	if opts.ReturnType == "count" {
		query.PageSize = 1
		page, err := s.backend.Assets(ctx, query)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Total assets: %d", page.Count), nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	query.PageSize = limit

	page, err := s.backend.Assets(ctx, query)
	if err != nil {
		return "", err
	}

	s.logger.Debugf("Asset search returned %d of %d assets", len(page.Results), page.Count)

	return formatAssetList(page.Results, page.Count, opts.Detailed), nil
}

// ModelVulnerabilities returns a formatted AI/ML model vulnerability
// summary across ML models, LLM models and datasets.
func (s *Service) ModelVulnerabilities(ctx context.Context) (string, error) {
	summary, err := s.backend.ModelIssuesSummary(ctx)
	if err != nil {
		return "", err
	}
	return formatModelVulnerabilities(summary), nil
}

// ModelStats returns deployed vs not-deployed model statistics over a
// last-seen window. Dates default to the last two weeks.
func (s *Service) ModelStats(ctx context.Context, afterDate, beforeDate string) (string, error) {
	now := s.now()
	if afterDate == "" {
		afterDate = now.AddDate(0, 0, -14).Format(dateFormat)
	}
	if beforeDate == "" {
		beforeDate = now.Format(dateFormat)
	}

	after, err := time.Parse(dateFormat, afterDate)
	if err != nil {
		return "", fmt.Errorf("invalid date %q; expected format YYYY-MM-DD", afterDate)
	}
	before, err := time.Parse(dateFormat, beforeDate)
	if err != nil {
		return "", fmt.Errorf("invalid date %q; expected format YYYY-MM-DD", beforeDate)
	}

	// The stats endpoint takes unix timestamps; the before bound covers
	// its whole day.
	afterTS := after.UTC().Unix()
	beforeTS := before.UTC().Add(24*time.Hour - time.Second).Unix()

	stats, err := s.backend.ModelStats(ctx, afterTS, beforeTS)
	if err != nil {
		return "", err
	}

	return formatModelStats(stats), nil
}
