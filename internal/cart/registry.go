package cart

import (
	"sync"

	pkgerrors "github.com/angelmondragon/gaspos-terminal/pkg/errors"
)

// ErrCheckoutInProgress is returned for any cart access while that cart is being checked out.
var ErrCheckoutInProgress = pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")

type entry struct {
	mu          sync.Mutex
	engine      *Engine
	checkingOut bool
}

// Registry owns one Engine per terminal session and serializes access to it.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*entry
	taxes TaxTable
	taxMu sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*entry)}
}

// SetTaxRules installs the tax table used by every cart from the next access on.
func (r *Registry) SetTaxRules(taxes TaxTable) {
	r.taxMu.Lock()
	r.taxes = taxes
	r.taxMu.Unlock()
}

func (r *Registry) taxTable() TaxTable {
	r.taxMu.RLock()
	defer r.taxMu.RUnlock()
	return r.taxes
}

func (r *Registry) entryFor(key string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.carts[key]
	if !ok {
		e = &entry{engine: NewEngine(nil)}
		r.carts[key] = e
	}
	return e
}

// Do runs fn with exclusive access to the session's cart.
func (r *Registry) Do(key string, fn func(*Engine) error) error {
	e := r.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.checkingOut {
		return ErrCheckoutInProgress
	}
	e.engine.SetTaxRules(r.taxTable())
	return fn(e.engine)
}

// Lease is a cart frozen for checkout. Exactly one of Complete or Abort must be called.
type Lease struct {
	entry *entry
	done  bool
}

// BeginCheckout freezes the session's cart. A second call before the first lease
// finishes fails with ErrCheckoutInProgress.
func (r *Registry) BeginCheckout(key string) (*Lease, error) {
	e := r.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.checkingOut {
		return nil, ErrCheckoutInProgress
	}
	e.checkingOut = true
	e.engine.SetTaxRules(r.taxTable())
	return &Lease{entry: e}, nil
}

// Engine exposes the frozen cart. Callers must only read from it.
func (l *Lease) Engine() *Engine {
	return l.entry.engine
}

// Complete clears the cart and releases it.
func (l *Lease) Complete() {
	l.finish(true)
}

// Abort releases the cart unchanged.
func (l *Lease) Abort() {
	l.finish(false)
}

func (l *Lease) finish(clear bool) {
	if l == nil || l.done {
		return
	}
	l.entry.mu.Lock()
	defer l.entry.mu.Unlock()
	if clear {
		l.entry.engine.Clear()
	}
	l.entry.checkingOut = false
	l.done = true
}
