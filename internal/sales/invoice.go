package sales

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultInvoicePrefix = "INV"

// InvoiceGenerator issues time-derived invoice numbers that strictly increase,
// even when two sales land in the same millisecond or the wall clock steps back.
// Seed it with the last stored number so this also holds across restarts.
type InvoiceGenerator struct {
	mu     sync.Mutex
	prefix string
	last   int64
	now    func() time.Time
}

func NewInvoiceGenerator(prefix string, now func() time.Time) *InvoiceGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultInvoicePrefix
	}
	if now == nil {
		now = time.Now
	}
	return &InvoiceGenerator{prefix: prefix, now: now}
}

func (g *InvoiceGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("%s-%d", g.prefix, ms)
}

// Seed raises the floor to a previously issued number. Numbers with another
// prefix or a non-numeric suffix are ignored.
func (g *InvoiceGenerator) Seed(invoiceNumber string) {
	suffix, ok := strings.CutPrefix(invoiceNumber, g.prefix+"-")
	if !ok {
		return
	}
	ms, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if ms > g.last {
		g.last = ms
	}
}

// Prefix is the terminal prefix every issued number starts with.
func (g *InvoiceGenerator) Prefix() string { return g.prefix }
