package finding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const dateFormat = "2006-01-02"

// Validator partitions caller-supplied filters into valid and invalid
// sets. Date range fields are validated locally by strict format parse;
// enumerable fields are validated against live dropdown values, with
// one concurrent lookup per distinct field.
type Validator struct {
	resolver *Resolver
	logger   *logrus.Logger

	// now is swappable for deterministic date backfill in tests
	now func() time.Time
}

// NewValidator creates a new filter validator
func NewValidator(resolver *Resolver, logger *logrus.Logger) *Validator {
	return &Validator{
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// ValidationResult is the outcome of validating one filter request
type ValidationResult struct {
	Valid    map[string]string
	Invalid  map[string]InvalidFilter
	Warnings []string
}

// Validate checks every filter before reporting, so the caller sees the
// complete set of problems in one response. A transport failure on any
// dropdown lookup aborts with an error; it is never treated as an empty
// candidate set.
func (v *Validator) Validate(ctx context.Context, filters map[string]string, dataType string, filterFields map[string]string) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:   make(map[string]string),
		Invalid: make(map[string]InvalidFilter),
	}

	enumerable := make(map[string]string)

	for field, value := range filters {
		if _, known := filterFields[field]; !known {
			// Unknown fields are noise, not misuse, but the caller
			// should still hear about them.
			result.Warnings = append(result.Warnings, fmt.Sprintf("ignored unknown filter field %q", field))
			v.logger.Debugf("Ignoring unknown filter field %q for data type %q", field, dataType)
			continue
		}

		if IsDateRangeField(field) {
			v.validateDateField(filters, field, value, result)
			continue
		}

		enumerable[field] = value
	}

	if len(enumerable) > 0 {
		if err := v.validateEnumerable(ctx, enumerable, dataType, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// validateDateField parses a date range value strictly and backfills the
// paired _before bound with today when only _after was supplied.
func (v *Validator) validateDateField(filters map[string]string, field, value string, result *ValidationResult) {
	if _, err := time.Parse(dateFormat, value); err != nil {
		result.Invalid[field] = InvalidFilter{
			ProvidedValue: value,
			Message:       fmt.Sprintf("invalid date %q for %s; expected format YYYY-MM-DD", value, field),
		}
		return
	}

	result.Valid[field] = value

	if strings.HasSuffix(field, "_after") {
		beforeField := strings.TrimSuffix(field, "_after") + "_before"
		if _, supplied := filters[beforeField]; !supplied {
			// Implicit "from X to now" window
			result.Valid[beforeField] = v.now().Format(dateFormat)
		}
	}
}

// validateEnumerable runs one dropdown lookup per distinct field
// concurrently and joins on all of them before producing a verdict.
func (v *Validator) validateEnumerable(ctx context.Context, enumerable map[string]string, dataType string, result *ValidationResult) error {
	type lookup struct {
		field    string
		value    string
		dropdown *DropdownResult
		err      error
	}

	lookupChan := make(chan lookup, len(enumerable))
	var wg sync.WaitGroup

	for field, value := range enumerable {
		wg.Add(1)
		go func(field, value string) {
			defer wg.Done()
			dropdown, err := v.resolver.Values(ctx, field, dataType, "")
			lookupChan <- lookup{field: field, value: value, dropdown: dropdown, err: err}
		}(field, value)
	}

	wg.Wait()
	close(lookupChan)

	var failures []error
	for l := range lookupChan {
		if l.err != nil {
			failures = append(failures, fmt.Errorf("failed to resolve values for filter field %q: %w", l.field, l.err))
			continue
		}

		candidates := l.dropdown.Results

		if len(candidates) == 0 {
			result.Invalid[l.field] = InvalidFilter{
				ProvidedValue: l.value,
				Message:       fmt.Sprintf("no valid values are currently available for %s", l.field),
			}
			continue
		}

		if !containsString(candidates, l.value) {
			result.Invalid[l.field] = InvalidFilter{
				ProvidedValue: l.value,
				ValidValues:   candidates,
				Message:       fmt.Sprintf("value %q is not among the %d valid values for %s", l.value, len(candidates), l.field),
			}
			continue
		}

		result.Valid[l.field] = l.value
	}

	if len(failures) > 0 {
		return errors.Join(failures...)
	}

	return nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
