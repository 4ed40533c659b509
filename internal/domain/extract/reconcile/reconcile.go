// Package reconcile repairs cohorts and picks the one the router returns.
package reconcile

import (
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

const (
	DefaultMinYield = 5

	// repairWindow is how far apart, in positions, two halves of a
	// continuation pair may sit.
	repairWindow = 2
)

// Reconciler keeps the best cohort across strategy runs. Cohorts are
// offered in router order; merging across cohorts is never done.
type Reconciler struct {
	minYield int
	best     *statement.Cohort
	adopted  bool
}

// New returns a reconciler; minYield <= 0 means DefaultMinYield.
func New(minYield int) *Reconciler {
	if minYield <= 0 {
		minYield = DefaultMinYield
	}
	return &Reconciler{minYield: minYield}
}

// Offer considers a scored cohort. It returns true once a cohort with at
// least minYield transactions and Good quality has been adopted; later
// offers are ignored.
func (r *Reconciler) Offer(c statement.Cohort) bool {
	if r.adopted {
		return true
	}
	if c.Len() >= r.minYield && c.Diagnostics.Quality.AtLeast(statement.QualityGood) {
		r.best = &c
		r.adopted = true
		return true
	}
	if r.best == nil || better(c, *r.best) {
		r.best = &c
	}
	return false
}

// better prefers the larger cohort, then the better quality. Ties keep the
// earlier cohort.
func better(c, than statement.Cohort) bool {
	if c.Len() != than.Len() {
		return c.Len() > than.Len()
	}
	return c.Diagnostics.Quality > than.Diagnostics.Quality
}

// Best returns the selected cohort, or false when nothing was offered.
func (r *Reconciler) Best() (statement.Cohort, bool) {
	if r.best == nil {
		return statement.Cohort{}, false
	}
	return r.best.Clone(), true
}

// Adopted reports whether a cohort met the primary rule.
func (r *Reconciler) Adopted() bool { return r.adopted }

// Finalize repairs and deduplicates a cohort.
func Finalize(c statement.Cohort) statement.Cohort {
	return Dedupe(Repair(c))
}

// Repair coalesces continuation pairs: a dated record without an amount
// and an undated record carrying the amount, marked with the same key by
// the strategy and at most two positions apart. Halves that find no
// partner are dropped and counted as rejected.
func Repair(c statement.Cohort) statement.Cohort {
	out := statement.Cohort{Diagnostics: c.Diagnostics}
	if c.Transactions == nil {
		return out
	}
	txs := c.Transactions
	used := make([]bool, len(txs))
	out.Transactions = make([]statement.Transaction, 0, len(txs))

	for i, tx := range txs {
		if used[i] {
			continue
		}
		if tx.ContinuationKey == 0 {
			out.Transactions = append(out.Transactions, tx)
			continue
		}
		j := partner(txs, used, i)
		if j < 0 {
			out.Diagnostics.RejectedCount++
			continue
		}
		used[j] = true
		head, tail := tx, txs[j]
		if !head.HasDate() {
			head, tail = tail, head
		}
		merged, ok := merge(head, tail)
		if !ok {
			out.Diagnostics.RejectedCount += 2
			continue
		}
		out.Transactions = append(out.Transactions, merged)
	}
	return out
}

func partner(txs []statement.Transaction, used []bool, i int) int {
	tx := txs[i]
	for d := 1; d <= repairWindow; d++ {
		for _, j := range []int{i + d, i - d} {
			if j < 0 || j >= len(txs) || used[j] || j == i {
				continue
			}
			o := txs[j]
			if o.ContinuationKey != tx.ContinuationKey {
				continue
			}
			if (tx.HasDate() && !tx.HasAmount() && o.HasAmount() && !o.HasDate()) ||
				(o.HasDate() && !o.HasAmount() && tx.HasAmount() && !tx.HasDate()) {
				return j
			}
		}
	}
	return -1
}

func merge(head, tail statement.Transaction) (statement.Transaction, bool) {
	m := head
	m.ContinuationKey = 0
	m.Amount = tail.Amount
	m.AmountString = tail.AmountString
	m.Balance = tail.Balance
	m.SignConfidence = tail.SignConfidence
	m.AmountConfidence = tail.AmountConfidence
	if d := strings.TrimSpace(tail.Description); d != "" {
		m.Description = strings.TrimSpace(m.Description + " " + d)
	}
	if m.Category == "" {
		m.Category = tail.Category
	}
	if m.Page == 0 {
		m.Page = tail.Page
	}
	return m, normalizer.Validate(m) == nil
}

// Dedupe drops later records whose (date, description, amount) key was
// already seen, preserving source order.
func Dedupe(c statement.Cohort) statement.Cohort {
	out := statement.Cohort{Diagnostics: c.Diagnostics}
	if c.Transactions == nil {
		return out
	}
	seen := make(map[string]struct{}, len(c.Transactions))
	out.Transactions = make([]statement.Transaction, 0, len(c.Transactions))
	for _, tx := range c.Transactions {
		key := tx.Key()
		if _, dup := seen[key]; dup {
			out.Diagnostics.RejectedCount++
			continue
		}
		seen[key] = struct{}{}
		out.Transactions = append(out.Transactions, tx)
	}
	return out
}
