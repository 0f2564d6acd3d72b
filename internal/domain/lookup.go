package domain

// MaxHistoryEntries bounds the persisted scan history.
const MaxHistoryEntries = 50

// Phase is the position of a lookup in its state machine:
// Idle -> LoadingProduct -> ProductError | LoadingSummary -> SummaryError | Summarized
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingProduct
	PhaseProductError
	PhaseLoadingSummary
	PhaseSummaryError
	PhaseSummarized
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoadingProduct:
		return "loading_product"
	case PhaseProductError:
		return "product_error"
	case PhaseLoadingSummary:
		return "loading_summary"
	case PhaseSummaryError:
		return "summary_error"
	case PhaseSummarized:
		return "summarized"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends an attempt.
func (p Phase) Terminal() bool {
	return p == PhaseProductError || p == PhaseSummaryError || p == PhaseSummarized
}

// Step is how far along the state machine p is. The two outcomes of a fetch
// share a step.
func (p Phase) Step() int {
	switch p {
	case PhaseLoadingProduct:
		return 1
	case PhaseProductError, PhaseLoadingSummary:
		return 2
	case PhaseSummaryError, PhaseSummarized:
		return 3
	default:
		return 0
	}
}

// Supersedes reports whether s should replace cur on display: a newer
// attempt always does, the same attempt only when it has not moved backwards.
func (s LookupState) Supersedes(cur LookupState) bool {
	if s.Attempt != cur.Attempt {
		return s.Attempt > cur.Attempt
	}
	return s.Phase.Step() >= cur.Phase.Step()
}

// LookupState is the view state of one lookup attempt.
// A new attempt replaces it wholesale.
type LookupState struct {
	Attempt    uint64
	Code       string
	Phase      Phase
	Product    *Product
	Summary    string
	ProductErr error
	SummaryErr error
}

// LoadingProduct reports whether the product fetch is in flight
func (s LookupState) LoadingProduct() bool {
	return s.Phase == PhaseLoadingProduct
}

// LoadingSummary reports whether the summary fetch is in flight
func (s LookupState) LoadingSummary() bool {
	return s.Phase == PhaseLoadingSummary
}

// ProductShown reports whether a product result is on display.
func (s LookupState) ProductShown() bool {
	return s.Product != nil && (s.Phase == PhaseLoadingSummary || s.Phase == PhaseSummaryError || s.Phase == PhaseSummarized)
}

// Err returns the error that ended the attempt, if any.
func (s LookupState) Err() error {
	if s.ProductErr != nil {
		return s.ProductErr
	}
	return s.SummaryErr
}
