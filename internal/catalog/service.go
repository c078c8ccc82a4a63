package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

// Read endpoints mirrored from the backend.
const (
	ResourceProductVariations = "product_variations_with_attributes"
	ResourceTax               = "tax"
	ResourceCustomer          = "customer"
	ResourceProductCategory   = "product_category"
	ResourceProduct           = "product"
)

// Resources lists every mirrored endpoint in refresh order.
var Resources = []string{
	ResourceProductVariations,
	ResourceTax,
	ResourceCustomer,
	ResourceProductCategory,
	ResourceProduct,
}

// Fetcher reads a backend path. *backend.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Document is a catalog body and where it came from.
type Document struct {
	Resource  string          `json:"resource"`
	Body      json.RawMessage `json:"body"`
	FetchedAt time.Time       `json:"fetched_at"`
	Stale     bool            `json:"stale"`
}

// Service is the network-first catalog mirror.
type Service interface {
	Get(ctx context.Context, resource string) (*Document, error)
	Refresh(ctx context.Context) error
	TaxRules(ctx context.Context) (cart.TaxTable, error)
}

type service struct {
	fetcher Fetcher
	repo    Repository
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(fetcher Fetcher, repo Repository, logg *logger.Logger, now func() time.Time) (Service, error) {
	if fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog fetcher required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{fetcher: fetcher, repo: repo, logg: logg, now: now}, nil
}

func knownResource(resource string) bool {
	for _, r := range Resources {
		if r == resource {
			return true
		}
	}
	return false
}

// Get fetches the resource from the backend and stores it. When the backend is
// unreachable the last stored copy is returned with Stale set.
func (s *service) Get(ctx context.Context, resource string) (*Document, error) {
	if !knownResource(resource) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown catalog resource %q", resource))
	}

	doc, fetchErr := s.fetch(ctx, resource)
	if fetchErr == nil {
		return doc, nil
	}

	ctx = s.logg.WithField(ctx, "resource", resource)
	snapshot, err := s.repo.Find(ctx, resource)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load catalog snapshot")
	}
	if snapshot == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fetchErr, fmt.Sprintf("%s unavailable and not cached", resource))
	}
	s.logg.Warn(s.logg.WithField(ctx, "fetched_at", snapshot.FetchedAt), "serving stale catalog snapshot")
	return &Document{
		Resource:  resource,
		Body:      json.RawMessage(snapshot.Body),
		FetchedAt: snapshot.FetchedAt,
		Stale:     true,
	}, nil
}

func (s *service) fetch(ctx context.Context, resource string) (*Document, error) {
	body, err := s.fetcher.Get(ctx, "/"+resource)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s returned malformed json", resource))
	}

	snapshot := &models.CatalogSnapshot{Resource: resource, Body: body, FetchedAt: s.now().UTC()}
	if err := s.repo.Upsert(ctx, snapshot); err != nil {
		// the fresh body is still usable; only the offline copy is behind
		s.logg.Error(s.logg.WithField(ctx, "resource", resource), "store catalog snapshot", err)
	}
	return &Document{Resource: resource, Body: json.RawMessage(body), FetchedAt: snapshot.FetchedAt}, nil
}

// Refresh pulls every resource and reports all failures together.
func (s *service) Refresh(ctx context.Context) error {
	var errs error
	for _, resource := range Resources {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if _, err := s.fetch(ctx, resource); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", resource, err))
		}
	}
	return errs
}

// TaxRules decodes the tax endpoint, stale or not, into the cart lookup table.
func (s *service) TaxRules(ctx context.Context) (cart.TaxTable, error) {
	doc, err := s.Get(ctx, ResourceTax)
	if err != nil {
		return nil, err
	}
	table, err := decodeTaxTable(doc.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode tax rules")
	}
	return table, nil
}
