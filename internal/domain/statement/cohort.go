package statement

import "time"

// Quality is the qualitative score of a cohort
type Quality int

const (
	QualityPoor Quality = iota
	QualityFair
	QualityGood
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityFair:
		return "fair"
	default:
		return "poor"
	}
}

// MarshalText renders the quality as its lowercase label.
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// AtLeast reports whether q is as good as other.
func (q Quality) AtLeast(other Quality) bool {
	return q >= other
}

// CohortDiagnostics describes one strategy run.
type CohortDiagnostics struct {
	Strategy      string        `json:"strategy_name"`
	RawCount      int           `json:"raw_count"`
	RejectedCount int           `json:"rejected_count"`
	Quality       Quality       `json:"quality"`
	Error         string        `json:"error,omitempty"`
	TimedOut      bool          `json:"timed_out,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// Cohort is the normalized output of one strategy. Cohorts are treated as
// values: stages that change them return a new cohort.
type Cohort struct {
	Transactions []Transaction
	Diagnostics  CohortDiagnostics
}

// Len returns the number of transactions.
func (c Cohort) Len() int {
	return len(c.Transactions)
}

// Clone returns a cohort with its own transaction slice.
func (c Cohort) Clone() Cohort {
	out := Cohort{Diagnostics: c.Diagnostics}
	if c.Transactions != nil {
		out.Transactions = make([]Transaction, len(c.Transactions))
		copy(out.Transactions, c.Transactions)
	}
	return out
}

// EmptyCohort returns a zero-length cohort attributed to a strategy.
func EmptyCohort(strategy string) Cohort {
	return Cohort{Diagnostics: CohortDiagnostics{Strategy: strategy, Quality: QualityPoor}}
}

// Diagnostics is the run-level summary handed back with the final cohort.
type Diagnostics struct {
	StrategyUsed     string              `json:"strategy_used"`
	PerStrategy      []CohortDiagnostics `json:"per_strategy_counts"`
	Quality          Quality             `json:"quality_score"`
	InferredYear     int                 `json:"inferred_year"`
	DetectedIssuer   Issuer              `json:"detected_issuer,omitempty"`
	DeadlineExceeded bool                `json:"deadline_exceeded,omitempty"`
	Archived         bool                `json:"archived,omitempty"`
	Profile          Profile             `json:"profile"`
	Duration         time.Duration       `json:"duration"`
}

// Result is what an extraction call returns.
type Result struct {
	Transactions []Transaction `json:"transactions"`
	Diagnostics  Diagnostics   `json:"diagnostics"`
}
