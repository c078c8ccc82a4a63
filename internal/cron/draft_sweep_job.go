package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

type draftEvictor interface {
	EvictExpired(ctx context.Context) (int64, error)
}

// NewDraftSweepJob removes drafts past their expiry even when nobody lists them.
func NewDraftSweepJob(logg *logger.Logger, drafts draftEvictor) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if drafts == nil {
		return nil, fmt.Errorf("draft store required")
	}
	return &draftSweepJob{logg: logg, drafts: drafts}, nil
}

type draftSweepJob struct {
	logg   *logger.Logger
	drafts draftEvictor
}

func (j *draftSweepJob) Name() string { return "draft-sweep" }

func (j *draftSweepJob) Run(ctx context.Context) error {
	removed, err := j.drafts.EvictExpired(ctx)
	if err != nil {
		return fmt.Errorf("evict expired drafts: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "count", removed), "draft sweep complete")
	return nil
}
