// Package catalog lists the models offered by the completion service.
package catalog

import (
	"context"
	"errors"

	"github.com/dshills/gptcommit/internal/apperror"
	"github.com/rs/zerolog/log"
)

// Lister is the part of the completion client the catalog needs.
type Lister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Catalog reports available model identifiers.
type Catalog struct {
	lister Lister
}

// New creates a Catalog backed by lister.
func New(lister Lister) *Catalog {
	return &Catalog{lister: lister}
}

// List returns the model identifiers in the order the service reports them.
// A single request is made; any failure is reported as ErrServiceUnavailable.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	ids, err := c.lister.ListModels(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		log.Debug().Err(err).Msg("Listing models failed")
		return nil, apperror.Wrap(apperror.ErrServiceUnavailable, err,
			"could not list models: %v", err)
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}
