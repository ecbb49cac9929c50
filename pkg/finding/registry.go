package finding

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/accuknox/cspm-mcp/pkg/client"
)

// baseDateFields are the raw catalog fields that the upstream query model
// only accepts as half-open date ranges, never as exact-date equality.
var baseDateFields = []string{"present_on_date", "last_seen", "date_discovered"}

// dateRangeFields is the full set of synthetic range field names
var dateRangeFields = func() map[string]bool {
	m := make(map[string]bool, len(baseDateFields)*2)
	for _, base := range baseDateFields {
		m[base+"_after"] = true
		m[base+"_before"] = true
	}
	return m
}()

// IsDateRangeField reports whether a filter field is one of the known
// date range fields.
func IsDateRangeField(field string) bool {
	return dateRangeFields[field]
}

// Registry resolves and caches DataTypeConfigs. The catalog is fetched
// from the backend exactly once: the first Resolve populates the cache
// for every data type in the catalog, and the configs are immutable for
// the remainder of the process lifetime.
type Registry struct {
	backend Backend
	logger  *logrus.Logger

	mu      sync.Mutex
	loaded  bool
	configs map[string]*DataTypeConfig
	order   []string
}

// NewRegistry creates a new config registry
func NewRegistry(backend Backend, logger *logrus.Logger) *Registry {
	return &Registry{
		backend: backend,
		logger:  logger,
		configs: make(map[string]*DataTypeConfig),
	}
}

// Resolve returns the config for a data type. An empty dataType yields
// a catalog-listing error enumerating the available names; an unknown
// dataType yields an error carrying the same list.
func (r *Registry) Resolve(ctx context.Context, dataType string) (*DataTypeConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	if dataType == "" {
		return nil, NewMissingDataTypeError(append([]string(nil), r.order...))
	}

	cfg, ok := r.configs[dataType]
	if !ok {
		return nil, NewUnknownDataTypeError(dataType, append([]string(nil), r.order...))
	}

	return cfg, nil
}

// DataTypes returns the catalog's data type names in catalog order
func (r *Registry) DataTypes(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	return append([]string(nil), r.order...), nil
}

// ensureLoadedLocked fetches and caches the catalog on first use. The
// mutex is held across the fetch so concurrent first-time resolutions
// coalesce into a single catalog request. A failed fetch leaves the
// registry unloaded, so the next call retries.
func (r *Registry) ensureLoadedLocked(ctx context.Context) error {
	if r.loaded {
		return nil
	}

	raw, err := r.backend.FilterConfigs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch filter config catalog: %w", err)
	}

	for _, rc := range raw {
		cfg := convertRawConfig(rc)
		if _, exists := r.configs[cfg.DataType]; exists {
			r.logger.Warnf("Duplicate data type %q in filter config catalog; keeping first", cfg.DataType)
			continue
		}
		r.configs[cfg.DataType] = cfg
		r.order = append(r.order, cfg.DataType)
	}

	r.loaded = true
	r.logger.Debugf("Resolved filter configs for %d data types", len(r.configs))

	return nil
}

// convertRawConfig turns a raw catalog entry into an immutable
// DataTypeConfig, normalizing date filter fields along the way.
func convertRawConfig(rc client.RawDataTypeConfig) *DataTypeConfig {
	cfg := &DataTypeConfig{
		DataType:       rc.DataType,
		DisplayFields:  copyStringMap(rc.DisplayFields),
		FilterFields:   normalizeFilterFields(rc.FilterFields),
		DefaultFilters: make(map[string][]string, len(rc.DefaultFilters)),
		GroupBy:        copyStringMap(rc.GroupBy),
		OrderBy:        rc.OrderBy,
	}

	for field, value := range rc.DefaultFilters {
		cfg.DefaultFilters[field] = toStringList(value)
	}

	return cfg
}

// normalizeFilterFields rewrites bare base date fields into paired
// _after/_before variants with generated descriptions; the bare field
// never survives into the usable filter set.
func normalizeFilterFields(raw map[string]string) map[string]string {
	fields := copyStringMap(raw)

	for _, base := range baseDateFields {
		if _, ok := fields[base]; !ok {
			continue
		}
		delete(fields, base)

		label := fieldLabel(base)
		fields[base+"_after"] = fmt.Sprintf("%s on or after this date. Format: YYYY-MM-DD", label)
		fields[base+"_before"] = fmt.Sprintf("%s on or before this date. Format: YYYY-MM-DD", label)
	}

	return fields
}

// fieldLabel turns an internal field name into a human-readable label,
// e.g. "present_on_date" -> "Present On Date".
func fieldLabel(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// toStringList normalizes a default filter value, which the catalog may
// deliver as a scalar or a list.
func toStringList(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}
