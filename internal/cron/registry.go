package cron

import (
	"context"
	"fmt"
	"strings"
)

// Job is a maintenance task the terminal runs on every cron tick.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds maintenance jobs keyed by name; job metrics are labelled by
// name so two jobs may not share one.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: map[string]struct{}{}}
}

// Register appends a job. Nil jobs, blank names and duplicates are rejected.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return fmt.Errorf("cron job is nil")
	}
	name := strings.TrimSpace(job.Name())
	if name == "" {
		return fmt.Errorf("cron job name is required")
	}
	if _, ok := r.names[name]; ok {
		return fmt.Errorf("cron job %q already registered", name)
	}
	r.names[name] = struct{}{}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns a copy of the jobs in registration order.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}
