package finding

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Resolver fetches the currently valid values for a filter field. It is
// deliberately cache-free: a value that existed at config-resolution
// time may be gone by validation time, so every lookup is live.
type Resolver struct {
	backend Backend
	logger  *logrus.Logger
}

// NewResolver creates a new dropdown resolver
func NewResolver(backend Backend, logger *logrus.Logger) *Resolver {
	return &Resolver{backend: backend, logger: logger}
}

// Values fetches the live dropdown value set for one filter field of a
// data type, optionally narrowed by a search term.
func (r *Resolver) Values(ctx context.Context, filterField, dataType, search string) (*DropdownResult, error) {
	discriminator, ok := Discriminator(dataType)
	if !ok {
		return nil, NewUnknownDataTypeError(dataType, KnownDiscriminatorDataTypes())
	}

	resp, err := r.backend.FilterValues(ctx, filterField, discriminator, search, 1)
	if err != nil {
		return nil, err
	}

	r.logger.Debugf("Resolved %d values for filter field %s (%s)", resp.Count, filterField, dataType)

	return &DropdownResult{
		FilterField: filterField,
		Count:       resp.Count,
		Results:     resp.Results,
	}, nil
}
