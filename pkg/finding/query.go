package finding

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fixed finding-dashboard query parameters
const (
	queryDepth      = "3"
	groupByOrdering = "-total"
	defaultPageSize = 10
)

// Engine composes and executes finding queries: it resolves the data
// type config, validates filters, builds the upstream request and
// interprets the response shape.
type Engine struct {
	backend   Backend
	registry  *Registry
	resolver  *Resolver
	validator *Validator
	logger    *logrus.Logger
}

// NewEngine creates a finding query engine backed by the given client
func NewEngine(backend Backend, logger *logrus.Logger) *Engine {
	resolver := NewResolver(backend, logger)
	return &Engine{
		backend:   backend,
		registry:  NewRegistry(backend, logger),
		resolver:  resolver,
		validator: NewValidator(resolver, logger),
		logger:    logger,
	}
}

// Config resolves the DataTypeConfig for a data type
func (e *Engine) Config(ctx context.Context, dataType string) (*DataTypeConfig, error) {
	return e.registry.Resolve(ctx, dataType)
}

// DataTypes lists the available data type names in catalog order
func (e *Engine) DataTypes(ctx context.Context) ([]string, error) {
	return e.registry.DataTypes(ctx)
}

// FilterValues fetches the live dropdown values for one filter field
func (e *Engine) FilterValues(ctx context.Context, filterField, dataType, search string) (*DropdownResult, error) {
	return e.resolver.Values(ctx, filterField, dataType, search)
}

// Execute runs one finding query end to end. Any invalid filter short-
// circuits the whole request: the outcome carries the complete invalid
// map and the dashboard is never queried.
func (e *Engine) Execute(ctx context.Context, opts QueryOptions) (*QueryOutcome, error) {
	cfg, err := e.registry.Resolve(ctx, opts.DataType)
	if err != nil {
		return nil, err
	}

	discriminator, ok := Discriminator(opts.DataType)
	if !ok {
		return nil, NewUnknownDataTypeError(opts.DataType, KnownDiscriminatorDataTypes())
	}

	validation, err := e.validator.Validate(ctx, opts.Filters, opts.DataType, cfg.FilterFields)
	if err != nil {
		return nil, err
	}

	outcome := &QueryOutcome{Warnings: validation.Warnings}

	if len(validation.Invalid) > 0 {
		outcome.Invalid = validation.Invalid
		return outcome, nil
	}

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("search", opts.Search)
	params.Set("depth", queryDepth)
	params.Set("vulnerability__data_type", discriminator)

	if ordering := composeOrdering(opts.Ordering, cfg.OrderBy); ordering != "" {
		params.Set("ordering", ordering)
	}

	for field, values := range cfg.DefaultFilters {
		if len(values) == 0 {
			continue
		}
		// Multi-valued defaults are an OR across values on the backend
		params.Set(field, strings.Join(values, "|"))
	}

	// Validated filters win over defaults on key collision
	for field, value := range validation.Valid {
		params.Set(field, value)
	}

	if opts.GroupBy != "" {
		if _, known := cfg.GroupBy[opts.GroupBy]; !known {
			outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("group_by field %q is not listed for data type %q", opts.GroupBy, opts.DataType))
		}
		params.Set("group_by", opts.GroupBy)
		params.Set("group_by_order", groupByOrdering)
	}

	resp, err := e.backend.FindingDashboard(ctx, params)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.GroupBy != "":
		// Grouped rows come back as summarized counts; no reshaping
		outcome.Result = &QueryResult{
			Kind:    KindGrouped,
			Count:   resp.Count,
			GroupBy: opts.GroupBy,
			Results: resp.Results,
		}

	case len(opts.DisplayFields) == 0:
		// Omitting display fields signals "count only"
		outcome.Result = &QueryResult{
			Kind:  KindCountOnly,
			Count: resp.Count,
		}

	default:
		display, warnings := whitelistDisplayFields(opts.DisplayFields, cfg)
		outcome.Warnings = append(outcome.Warnings, warnings...)
		outcome.Result = &QueryResult{
			Kind:    KindDetailed,
			Count:   resp.Count,
			Page:    page,
			Results: ShapeRows(resp.Results, display),
		}
	}

	return outcome, nil
}

// composeOrdering picks the caller's ordering over the config default
// and coerces the result to descending.
func composeOrdering(requested, fallback string) string {
	ordering := requested
	if ordering == "" {
		ordering = fallback
	}
	if ordering == "" {
		return ""
	}
	if !strings.HasPrefix(ordering, "-") {
		ordering = "-" + ordering
	}
	return ordering
}

// whitelistDisplayFields keeps only the requested fields present in the
// config's display whitelist. Unknown fields are dropped with a warning;
// if nothing survives, the full default display set applies.
func whitelistDisplayFields(requested map[string]string, cfg *DataTypeConfig) (map[string]string, []string) {
	kept := make(map[string]string)
	var warnings []string

	for field, display := range requested {
		if _, ok := cfg.DisplayFields[field]; !ok {
			warnings = append(warnings, fmt.Sprintf("ignored unknown display field %q", field))
			continue
		}
		kept[field] = display
	}

	if len(kept) == 0 {
		warnings = append(warnings, "no requested display fields are known; using the default display set")
		return copyStringMap(cfg.DisplayFields), warnings
	}

	return kept, warnings
}
