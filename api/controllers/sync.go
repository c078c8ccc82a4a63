package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/gaspos-terminal/api/responses"
	"github.com/angelmondragon/gaspos-terminal/internal/salesync"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

// SyncRunner is the part of the sync coordinator the API drives.
type SyncRunner interface {
	Drain(ctx context.Context, trigger string) (*salesync.Result, error)
	LastResult() *salesync.Result
	Running() bool
}

// OnlineReporter reports the last known backend connectivity.
type OnlineReporter interface {
	Online() bool
}

// UnsyncedCounter counts queued sales that have not reached the backend.
type UnsyncedCounter interface {
	CountUnsynced(ctx context.Context) (int64, error)
}

// TriggerSync drains the queue synchronously. A drain already in flight is a 409.
func TriggerSync(runner SyncRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := runner.Drain(r.Context(), "manual")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type syncStatusResponse struct {
	Online     bool             `json:"online"`
	Running    bool             `json:"running"`
	Unsynced   int64            `json:"unsynced"`
	LastResult *salesync.Result `json:"last_result,omitempty"`
}

func SyncStatus(runner SyncRunner, monitor OnlineReporter, queue UnsyncedCounter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unsynced, err := queue.CountUnsynced(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp := syncStatusResponse{
			Running:    runner.Running(),
			Unsynced:   unsynced,
			LastResult: runner.LastResult(),
		}
		if monitor != nil {
			resp.Online = monitor.Online()
		}
		responses.WriteSuccess(w, resp)
	}
}
