// Package strategy holds the extraction strategies and the registry the
// router orders them from.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Names of the generic strategies.
const (
	NameTable          = "table"
	NameTextLayout     = "text-layout"
	NameColumnPosition = "column-position"
	NameOCR            = "ocr"
	NameSummary        = "summary"
)

// DefaultOrder is the preferred order for an unknown issuer.
var DefaultOrder = []string{NameTable, NameTextLayout, NameColumnPosition, NameOCR, NameSummary}

// Strategy extracts raw records from one PDF. Implementations must not
// keep state between calls and should return ctx.Err() promptly once the
// context is done.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, path string, profile statement.Profile) (*statement.Extraction, error)
}

var ErrDuplicateStrategy = errors.New("strategy already registered")

// Entry describes a registered strategy. New is called at most once, the
// first time the entry is ordered. Ready reports whether the strategy's
// collaborators are usable; nil means always ready.
type Entry struct {
	Name   string
	Issuer statement.Issuer
	New    func() Strategy
	Ready  func() bool
}

type slot struct {
	Entry
	once sync.Once
	inst Strategy
}

func (s *slot) strategy() Strategy {
	s.once.Do(func() { s.inst = s.New() })
	return s.inst
}

func (s *slot) ready() bool {
	return s.Ready == nil || s.Ready()
}

// Registry is built once at router construction and is safe for
// concurrent use afterwards.
type Registry struct {
	mu       sync.RWMutex
	slots    []*slot
	byName   map[string]*slot
	byIssuer map[statement.Issuer]*slot
}

func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*slot),
		byIssuer: make(map[statement.Issuer]*slot),
	}
}

// Register adds an entry. Names must be unique and an issuer may have at
// most one specialized strategy.
func (r *Registry) Register(e Entry) error {
	if e.Name == "" || e.New == nil {
		return fmt.Errorf("register %q: name and constructor are required", e.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[e.Name]; ok {
		return fmt.Errorf("register %q: %w", e.Name, ErrDuplicateStrategy)
	}
	if e.Issuer != "" {
		if _, ok := r.byIssuer[e.Issuer]; ok {
			return fmt.Errorf("register %q for issuer %s: %w", e.Name, e.Issuer, ErrDuplicateStrategy)
		}
	}
	s := &slot{Entry: e}
	r.slots = append(r.slots, s)
	r.byName[e.Name] = s
	if e.Issuer != "" {
		r.byIssuer[e.Issuer] = s
	}
	return nil
}

// MustRegister is Register for static wiring.
func (r *Registry) MustRegister(entries ...Entry) {
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
}

// Names lists registered strategies in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.Name
	}
	return out
}

// Order returns the strategies to try for a document. A ready issuer
// specialization goes first. Scanned documents try OCR before the text
// strategies, and documents without tables try the table strategy after
// the column strategy. Strategies that are not ready are left out.
func (r *Registry) Order(profile statement.Profile, issuer statement.Issuer) []Strategy {
	names := append([]string(nil), DefaultOrder...)
	if !profile.HasTables {
		names = moveAfter(names, NameTable, NameColumnPosition)
	}
	if profile.IsScanned {
		names = moveFirst(names, NameOCR)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Strategy
	if s, ok := r.byIssuer[issuer]; ok && issuer != "" && s.ready() {
		out = append(out, s.strategy())
	}
	for _, name := range names {
		if s, ok := r.byName[name]; ok && s.Issuer == "" && s.ready() {
			out = append(out, s.strategy())
		}
	}
	return out
}

func moveFirst(names []string, name string) []string {
	out := []string{name}
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func moveAfter(names []string, name, after string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == name {
			continue
		}
		out = append(out, n)
		if n == after {
			out = append(out, name)
		}
	}
	return out
}
