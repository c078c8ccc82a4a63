package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

type catalogRefresher interface {
	Refresh(ctx context.Context) error
	TaxRules(ctx context.Context) (cart.TaxTable, error)
}

type taxRuleSink interface {
	SetTaxRules(taxes cart.TaxTable)
}

// CatalogRefreshJobParams configures the catalog mirror refresh.
type CatalogRefreshJobParams struct {
	Logger  *logger.Logger
	Catalog catalogRefresher
	Carts   taxRuleSink
	// Every throttles the job when the cron cadence is shorter.
	Every time.Duration
}

// NewCatalogRefreshJob keeps the offline catalog copy current and pushes the
// latest tax rules into every open cart.
func NewCatalogRefreshJob(params CatalogRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart registry required")
	}
	return &catalogRefreshJob{
		logg:    params.Logger,
		catalog: params.Catalog,
		carts:   params.Carts,
		every:   params.Every,
		now:     time.Now,
	}, nil
}

type catalogRefreshJob struct {
	logg    *logger.Logger
	catalog catalogRefresher
	carts   taxRuleSink
	every   time.Duration
	now     func() time.Time
	lastRun time.Time
}

func (j *catalogRefreshJob) Name() string { return "catalog-refresh" }

// Run refreshes every resource, then reloads tax rules. Tax rules are loaded
// even when some resources failed since the stored copy is still usable.
func (j *catalogRefreshJob) Run(ctx context.Context) error {
	now := j.now()
	if j.every > 0 && !j.lastRun.IsZero() && now.Sub(j.lastRun) < j.every {
		j.logg.Debug(ctx, "catalog refreshed recently; skipping")
		return nil
	}
	j.lastRun = now

	var errs error
	if err := j.catalog.Refresh(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}

	taxes, err := j.catalog.TaxRules(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("load tax rules: %w", err))
	} else {
		j.carts.SetTaxRules(taxes)
		j.logg.Info(j.logg.WithField(ctx, "tax_rules", len(taxes)), "tax rules reloaded")
	}
	return errs
}
