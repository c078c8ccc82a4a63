package salesync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/angelmondragon/gaspos-terminal/pkg/backend"
	"github.com/angelmondragon/gaspos-terminal/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
	"github.com/angelmondragon/gaspos-terminal/pkg/metrics"
)

// ErrSyncInProgress is returned when another drain, local or on a terminal
// sharing the store, is already running.
var ErrSyncInProgress = pkgerrors.New(pkgerrors.CodeConflict, "sync already in progress")

// Queue is the part of the sale queue the coordinator drains.
type Queue interface {
	ListUnsynced(ctx context.Context) ([]models.Sale, error)
	MarkSynced(ctx context.Context, invoiceNumber string) error
	CountUnsynced(ctx context.Context) (int64, error)
}

// Submitter uploads one order. *backend.Client satisfies it.
type Submitter interface {
	SubmitOrder(ctx context.Context, order backend.OrderRequest) error
}

// Lock serializes drains across processes sharing one store.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Result summarizes one drain.
type Result struct {
	Trigger       string    `json:"trigger"`
	StartedAt     time.Time `json:"started_at"`
	Attempted     int       `json:"attempted"`
	Synced        int       `json:"synced"`
	Remaining     int       `json:"remaining"`
	FailedInvoice string    `json:"failed_invoice,omitempty"`
	Error         string    `json:"error,omitempty"`

	err error
}

// Err is the submission failure that stopped the run, if any.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	return r.err
}

type Params struct {
	Queue     Queue
	Submitter Submitter
	Logger    *logger.Logger
	Metrics   *metrics.SyncMetrics
	// Lock is optional; a single till needs none.
	Lock Lock
	// RatePerSecond <= 0 disables pacing.
	RatePerSecond float64
	Burst         int
	Interval      time.Duration
	Now           func() time.Time
}

// Coordinator uploads queued sales in order, one drain at a time.
type Coordinator struct {
	queue     Queue
	submitter Submitter
	logg      *logger.Logger
	metrics   *metrics.SyncMetrics
	lock      Lock
	limiter   *rate.Limiter
	interval  time.Duration
	now       func() time.Time

	running  atomic.Bool
	triggers chan string
	last     atomic.Pointer[Result]
}

const defaultInterval = time.Minute

func NewCoordinator(params Params) (*Coordinator, error) {
	if params.Queue == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sale queue required")
	}
	if params.Submitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order submitter required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}

	limit := rate.Inf
	if params.RatePerSecond > 0 {
		limit = rate.Limit(params.RatePerSecond)
	}
	burst := params.Burst
	if burst <= 0 {
		burst = 1
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &Coordinator{
		queue:     params.Queue,
		submitter: params.Submitter,
		logg:      params.Logger,
		metrics:   params.Metrics,
		lock:      params.Lock,
		limiter:   rate.NewLimiter(limit, burst),
		interval:  interval,
		now:       now,
		triggers:  make(chan string, 1),
	}, nil
}

// Drain submits every unsynced sale in insertion order. Each accepted sale is
// marked synced before the next one is sent. The first failure ends the run and
// leaves that sale and everything after it queued for the next trigger.
func (c *Coordinator) Drain(ctx context.Context, trigger string) (*Result, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer c.running.Store(false)

	if c.lock != nil {
		ok, err := c.lock.Acquire(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire sync lock")
		}
		if !ok {
			return nil, ErrSyncInProgress
		}
		defer func() {
			if err := c.lock.Release(context.WithoutCancel(ctx)); err != nil {
				c.logg.Error(ctx, "failed to release sync lock", err)
			}
		}()
	}

	result := &Result{Trigger: trigger, StartedAt: c.now().UTC()}
	ctx = c.logg.WithField(ctx, "sync_trigger", trigger)
	defer func() {
		c.metrics.ObserveRun(trigger, c.now().Sub(result.StartedAt))
		c.publishDepth(ctx)
		c.last.Store(result)
	}()

	pending, err := c.queue.ListUnsynced(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read unsynced sales")
	}
	if len(pending) == 0 {
		return result, nil
	}

	for i := range pending {
		sale := pending[i]
		saleCtx := c.logg.WithInvoiceNumber(ctx, sale.InvoiceNumber)

		if err := c.limiter.Wait(ctx); err != nil {
			c.fail(result, sale.InvoiceNumber, err)
			break
		}

		result.Attempted++
		if err := c.submitter.SubmitOrder(saleCtx, BuildOrder(sale)); err != nil {
			c.metrics.IncFailed()
			c.logg.Warn(c.logg.WithField(saleCtx, "error", err.Error()), "sale upload failed; stopping sync run")
			c.fail(result, sale.InvoiceNumber, err)
			break
		}
		if err := c.queue.MarkSynced(saleCtx, sale.InvoiceNumber); err != nil {
			c.logg.Error(saleCtx, "sale accepted but not marked synced", err)
			c.fail(result, sale.InvoiceNumber, err)
			break
		}
		c.metrics.IncSynced()
		result.Synced++
	}
	result.Remaining = len(pending) - result.Synced

	c.logg.Info(c.logg.WithFields(ctx, map[string]any{
		"attempted": result.Attempted,
		"synced":    result.Synced,
		"remaining": result.Remaining,
	}), "sync run complete")
	return result, nil
}

func (c *Coordinator) fail(result *Result, invoiceNumber string, err error) {
	result.FailedInvoice = invoiceNumber
	result.Error = err.Error()
	result.err = err
}

func (c *Coordinator) publishDepth(ctx context.Context) {
	n, err := c.queue.CountUnsynced(ctx)
	if err != nil {
		return
	}
	c.metrics.SetQueueDepth(n)
}

// LastResult returns the most recent completed drain, or nil.
func (c *Coordinator) LastResult() *Result {
	return c.last.Load()
}

// Running reports whether a drain is in flight in this process.
func (c *Coordinator) Running() bool {
	return c.running.Load()
}

// Trigger asks Run to drain soon. Triggers arriving while one is pending collapse.
func (c *Coordinator) Trigger(reason string) {
	select {
	case c.triggers <- reason:
	default:
	}
}

// Run drains once at start, then on every tick and every Trigger until ctx ends.
func (c *Coordinator) Run(ctx context.Context) error {
	c.runOnce(ctx, "startup")

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logg.Info(ctx, "sync loop context canceled")
			return ctx.Err()
		case <-ticker.C:
			c.runOnce(ctx, "interval")
		case reason := <-c.triggers:
			c.runOnce(ctx, reason)
		}
	}
}

func (c *Coordinator) runOnce(ctx context.Context, trigger string) {
	result, err := c.Drain(ctx, trigger)
	switch {
	case errors.Is(err, ErrSyncInProgress):
		c.logg.Debug(ctx, "sync skipped; another run in progress")
	case err != nil:
		c.logg.Error(c.logg.WithField(ctx, "sync_trigger", trigger), "sync run failed", err)
	case result.Err() != nil && !pkgerrors.IsRetryable(result.Err()):
		c.logg.Error(ctx, fmt.Sprintf("sync stopped at %s", result.FailedInvoice), result.Err())
	}
}
