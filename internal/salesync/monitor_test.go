package salesync

import (
	"context"
	"errors"
	"testing"
)

type scriptedProber struct {
	results []error
}

func (p *scriptedProber) Probe(context.Context) error {
	err := p.results[0]
	p.results = p.results[1:]
	return err
}

func TestMonitorFiresOnlyOnRestore(t *testing.T) {
	offline := errors.New("offline")
	prober := &scriptedProber{results: []error{nil, offline, offline, nil, nil, offline, nil}}
	restores := 0
	m := NewConnectivityMonitor(prober, 0, func() { restores++ }, testLogger())

	ctx := context.Background()
	for range 7 {
		m.Check(ctx)
	}
	if restores != 2 {
		t.Fatalf("expected 2 restores, got %d", restores)
	}
	if !m.Online() {
		t.Fatal("expected monitor to report online")
	}
}

func TestMonitorFirstProbeOfflineThenOnline(t *testing.T) {
	prober := &scriptedProber{results: []error{errors.New("offline"), nil}}
	restores := 0
	m := NewConnectivityMonitor(prober, 0, func() { restores++ }, testLogger())

	if m.Check(context.Background()) {
		t.Fatal("expected offline")
	}
	if !m.Check(context.Background()) {
		t.Fatal("expected online")
	}
	if restores != 1 {
		t.Fatalf("expected one restore, got %d", restores)
	}
}
