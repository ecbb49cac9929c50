package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/accuknox/cspm-mcp/pkg/client"
	"github.com/accuknox/cspm-mcp/pkg/finding"
)

// jsonResult marshals a payload into a text tool result. Every tool
// outcome, including domain errors, is returned as data so an LLM
// caller can read and self-correct.
func jsonResult(payload interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// errorResult converts an engine or client error into a structured
// error payload.
func errorResult(err error) *mcp.CallToolResult {
	payload := map[string]interface{}{
		"error": err.Error(),
	}

	var dtErr *finding.DataTypeError
	if errors.As(err, &dtErr) {
		if finding.IsMissingDataType(err) {
			payload["error"] = "data type not provided"
		} else {
			payload["error"] = fmt.Sprintf("unknown data type %q", dtErr.DataType)
		}
		payload["available_data_types"] = dtErr.Known
		return jsonResult(payload)
	}

	switch {
	case client.IsTimeout(err):
		payload["error"] = "upstream request timed out"
		payload["details"] = err.Error()
	case client.IsConnectFailure(err):
		payload["error"] = "upstream connection failed"
		payload["details"] = err.Error()
	case client.IsHTTPError(err):
		payload["error"] = "upstream returned an error response"
		payload["details"] = err.Error()
	}

	return jsonResult(payload)
}

// malformedInputResult reports a non-decodable structured argument
func malformedInputResult(argument string, err error) *mcp.CallToolResult {
	return jsonResult(map[string]interface{}{
		"error":   fmt.Sprintf("malformed %s argument", argument),
		"details": err.Error(),
	})
}
