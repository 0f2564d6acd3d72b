package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"go.uber.org/zap"
)

// HistoryRecorder is the part of the history store the pipeline needs
type HistoryRecorder interface {
	Record(ctx context.Context, code string) error
}

// StateObserver receives every state a lookup applies
type StateObserver func(domain.LookupState)

// LookupPipeline fetches a product and then its summary for one barcode at a time.
//
// At most one lookup runs at once; triggers arriving meanwhile are dropped.
// Each attempt carries an id and only the latest attempt may write state.
type LookupPipeline struct {
	products  domain.ProductClient
	summaries domain.SummaryClient
	history   HistoryRecorder
	observer  StateObserver
	logger    *zap.Logger

	mu      sync.Mutex
	attempt uint64
	running uint64 // attempt holding the in-flight claim, 0 when idle
	state   domain.LookupState
}

// LookupOption configures a LookupPipeline
type LookupOption func(*LookupPipeline)

// WithObserver registers a callback for state transitions. It is called
// without the pipeline lock held, in transition order for a given attempt.
func WithObserver(observer StateObserver) LookupOption {
	return func(p *LookupPipeline) { p.observer = observer }
}

// WithLookupLogger sets the pipeline logger
func WithLookupLogger(logger *zap.Logger) LookupOption {
	return func(p *LookupPipeline) { p.logger = logger.Named("lookup") }
}

// NewLookupPipeline creates a pipeline in the Idle state
func NewLookupPipeline(
	products domain.ProductClient,
	summaries domain.SummaryClient,
	history HistoryRecorder,
	opts ...LookupOption,
) *LookupPipeline {
	p := &LookupPipeline{
		products:  products,
		summaries: summaries,
		history:   history,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns a snapshot of the current lookup state
func (p *LookupPipeline) State() domain.LookupState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// InFlight reports whether a lookup is running
func (p *LookupPipeline) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running != 0
}

// RunLookup records code in the history and looks it up.
//
// It returns domain.ErrEmptyInput for blank input, domain.ErrLookupInProgress
// when another lookup is running and domain.ErrAlreadyShown when code is
// already on display; none of these touch the network, the history or the
// state. Otherwise the returned state is the terminal state of the attempt
// and the error is its product or summary error, or
// domain.ErrLookupSuperseded if Reset ran while it was in flight.
func (p *LookupPipeline) RunLookup(ctx context.Context, raw string) (domain.LookupState, error) {
	return p.run(ctx, raw, true)
}

// SelectFromHistory looks up a code picked from the history list. Viewing
// history does not reorder it, so the code is not recorded again.
func (p *LookupPipeline) SelectFromHistory(ctx context.Context, code string) (domain.LookupState, error) {
	return p.run(ctx, code, false)
}

// Reset invalidates the current attempt and returns the new Idle state.
// Results of an attempt still in flight are discarded when they arrive, and
// new lookups are refused until it has settled. The observer is not called;
// the caller owns the returned state.
func (p *LookupPipeline) Reset() domain.LookupState {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.attempt++
	p.state = domain.LookupState{Attempt: p.attempt, Phase: domain.PhaseIdle}
	return p.state
}

func (p *LookupPipeline) run(ctx context.Context, raw string, record bool) (domain.LookupState, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return p.State(), domain.ErrEmptyInput
	}

	attempt, err := p.begin(code)
	if err != nil {
		p.logger.Debug("lookup ignored", zap.String("code", code), zap.Error(err))
		return p.State(), err
	}
	defer p.finish(attempt)

	if record {
		if err := p.history.Record(ctx, code); err != nil {
			p.logger.Warn("recording history failed", zap.String("code", code), zap.Error(err))
		}
	}

	if state, ok := p.apply(attempt, func(s *domain.LookupState) {
		*s = domain.LookupState{Attempt: attempt, Code: code, Phase: domain.PhaseLoadingProduct}
	}); !ok {
		return state, domain.ErrLookupSuperseded
	}

	product, err := p.products.GetProduct(ctx, code)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) && !errors.Is(err, domain.ErrProductFetchFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrProductFetchFailed, err)
		}
		p.logger.Info("product lookup failed", zap.String("code", code), zap.Error(err))
		state, ok := p.apply(attempt, func(s *domain.LookupState) {
			s.Phase = domain.PhaseProductError
			s.ProductErr = err
		})
		if !ok {
			return state, domain.ErrLookupSuperseded
		}
		return state, err
	}

	if state, ok := p.apply(attempt, func(s *domain.LookupState) {
		s.Phase = domain.PhaseLoadingSummary
		s.Product = product
	}); !ok {
		return state, domain.ErrLookupSuperseded
	}

	summary, err := p.summaries.Summarize(ctx, product.SummaryRequest())
	if err != nil {
		if !errors.Is(err, domain.ErrSummaryUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrSummaryUnavailable, err)
		}
		p.logger.Info("summary failed", zap.String("code", code), zap.Error(err))
		state, ok := p.apply(attempt, func(s *domain.LookupState) {
			s.Phase = domain.PhaseSummaryError
			s.SummaryErr = err
		})
		if !ok {
			return state, domain.ErrLookupSuperseded
		}
		return state, err
	}

	state, ok := p.apply(attempt, func(s *domain.LookupState) {
		s.Phase = domain.PhaseSummarized
		s.Summary = summary
	})
	if !ok {
		return state, domain.ErrLookupSuperseded
	}
	return state, nil
}

// begin claims the pipeline for a new attempt
func (p *LookupPipeline) begin(code string) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running != 0 {
		return 0, domain.ErrLookupInProgress
	}
	if p.state.Code == code && p.state.ProductShown() && p.state.Phase.Terminal() {
		return 0, domain.ErrAlreadyShown
	}

	p.attempt++
	p.running = p.attempt
	return p.attempt, nil
}

// finish releases the in-flight claim. A reset attempt keeps the claim until
// it settles here.
func (p *LookupPipeline) finish(attempt uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running == attempt {
		p.running = 0
	}
}

// apply mutates the state if attempt is still current and returns the
// resulting state. A stale attempt leaves the shared state alone, gets back
// an empty state carrying its own id and false.
func (p *LookupPipeline) apply(attempt uint64, mutate func(*domain.LookupState)) (domain.LookupState, bool) {
	p.mu.Lock()
	if p.attempt != attempt {
		p.mu.Unlock()
		p.logger.Debug("dropping stale result", zap.Uint64("attempt", attempt))
		return domain.LookupState{Attempt: attempt}, false
	}
	mutate(&p.state)
	state := p.state
	p.mu.Unlock()

	p.notify(state)
	return state, true
}

func (p *LookupPipeline) notify(state domain.LookupState) {
	if p.observer != nil {
		p.observer(state)
	}
}
