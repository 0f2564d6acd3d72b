package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func oats(ctx context.Context, code string) (*domain.Product, error) {
	return &domain.Product{Code: code, Name: "Test Oats", Brand: "Brand", Categories: "Cereals"}, nil
}

func TestLookupPipeline_Summarized(t *testing.T) {
	ctx := context.Background()
	history := NewHistoryStore(storage.NewMemoryStorage(), nil)
	products := &mockProductClient{getFunc: oats}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "Short eco text.", nil
	}}

	p := NewLookupPipeline(products, summaries, history)
	state, err := p.RunLookup(ctx, "7311870010970")

	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSummarized, state.Phase)
	require.NotNil(t, state.Product)
	assert.Equal(t, "Test Oats", state.Product.DisplayName())
	assert.Equal(t, "Short eco text.", state.Summary)
	assert.Equal(t, "7311870010970", history.Entries()[0])
	assert.False(t, p.InFlight())

	assert.Equal(t, domain.SummaryRequest{ProductName: "Test Oats", Brand: "Brand", Categories: "Cereals"}, summaries.LastRequest())
}

func TestLookupPipeline_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		products := &mockProductClient{getFunc: oats}
		summaries := &mockSummaryClient{}
		history := &recordingHistory{}

		p := NewLookupPipeline(products, summaries, history)
		state, err := p.RunLookup(context.Background(), input)

		assert.ErrorIs(t, err, domain.ErrEmptyInput)
		assert.Equal(t, domain.PhaseIdle, state.Phase)
		assert.Zero(t, products.calls.Load())
		assert.Zero(t, summaries.calls.Load())
		assert.Empty(t, history.Codes())
	}
}

func TestLookupPipeline_TrimsInput(t *testing.T) {
	products := &mockProductClient{getFunc: oats}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "ok", nil
	}}
	history := &recordingHistory{}

	p := NewLookupPipeline(products, summaries, history)
	state, err := p.RunLookup(context.Background(), "  123  ")

	require.NoError(t, err)
	assert.Equal(t, "123", state.Code)
	assert.Equal(t, []string{"123"}, history.Codes())
}

func TestLookupPipeline_ProductNotFound(t *testing.T) {
	products := &mockProductClient{getFunc: func(ctx context.Context, code string) (*domain.Product, error) {
		return nil, domain.ErrProductNotFound
	}}
	summaries := &mockSummaryClient{}
	history := &recordingHistory{}

	p := NewLookupPipeline(products, summaries, history)
	state, err := p.RunLookup(context.Background(), "0000000000000")

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, domain.PhaseProductError, state.Phase)
	assert.Nil(t, state.Product)
	assert.Zero(t, summaries.calls.Load())
	assert.Equal(t, "Hittade ingen produkt för den här koden.", domain.UserMessage(state.Err()))
	// recorded even though the lookup failed
	assert.Equal(t, []string{"0000000000000"}, history.Codes())
}

func TestLookupPipeline_ProductFetchError(t *testing.T) {
	products := &mockProductClient{getFunc: func(ctx context.Context, code string) (*domain.Product, error) {
		return nil, errors.New("connection refused")
	}}
	summaries := &mockSummaryClient{}

	p := NewLookupPipeline(products, summaries, &recordingHistory{})
	state, err := p.RunLookup(context.Background(), "1")

	assert.ErrorIs(t, err, domain.ErrProductFetchFailed)
	assert.Equal(t, domain.PhaseProductError, state.Phase)
	assert.Zero(t, summaries.calls.Load())
	assert.Equal(t, "Något gick fel när vi hämtade data.", domain.UserMessage(state.Err()))
}

func TestLookupPipeline_SummaryFailureKeepsProduct(t *testing.T) {
	products := &mockProductClient{getFunc: oats}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "", errors.New("status 500")
	}}

	p := NewLookupPipeline(products, summaries, &recordingHistory{})
	state, err := p.RunLookup(context.Background(), "1")

	assert.ErrorIs(t, err, domain.ErrSummaryUnavailable)
	assert.Equal(t, domain.PhaseSummaryError, state.Phase)
	require.NotNil(t, state.Product)
	assert.Equal(t, "Test Oats", state.Product.Name)
	assert.True(t, state.ProductShown())
	assert.Empty(t, state.Summary)
	assert.Equal(t, "Kunde inte hämta AI-sammanfattning.", domain.UserMessage(state.Err()))
}

func TestLookupPipeline_DefaultsSentToSummary(t *testing.T) {
	products := &mockProductClient{getFunc: func(ctx context.Context, code string) (*domain.Product, error) {
		return &domain.Product{Code: code}, nil
	}}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "ok", nil
	}}

	p := NewLookupPipeline(products, summaries, &recordingHistory{})
	_, err := p.RunLookup(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, domain.SummaryRequest{
		ProductName: domain.DefaultProductName,
		Brand:       domain.DefaultBrand,
		Categories:  domain.DefaultCategories,
	}, summaries.LastRequest())
}

func TestLookupPipeline_ObserverSeesTransitions(t *testing.T) {
	products := &mockProductClient{getFunc: oats}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "ok", nil
	}}

	var phases []domain.Phase
	p := NewLookupPipeline(products, summaries, &recordingHistory{},
		WithObserver(func(s domain.LookupState) { phases = append(phases, s.Phase) }))

	_, err := p.RunLookup(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, []domain.Phase{
		domain.PhaseLoadingProduct,
		domain.PhaseLoadingSummary,
		domain.PhaseSummarized,
	}, phases)
}

func TestLookupPipeline_InFlightGuard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	products := &mockProductClient{getFunc: func(ctx context.Context, code string) (*domain.Product, error) {
		close(started)
		<-release
		return oats(ctx, code)
	}}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "ok", nil
	}}
	history := &recordingHistory{}

	p := NewLookupPipeline(products, summaries, history)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = p.RunLookup(context.Background(), "A")
	}()
	<-started

	assert.True(t, p.InFlight())
	state, err := p.RunLookup(context.Background(), "B")
	assert.ErrorIs(t, err, domain.ErrLookupInProgress)
	assert.Equal(t, "A", state.Code)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), products.calls.Load())
	assert.Equal(t, []string{"A"}, history.Codes())
	assert.False(t, p.InFlight())
}

func TestLookupPipeline_AlreadyShown(t *testing.T) {
	products := &mockProductClient{getFunc: oats}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "ok", nil
	}}

	p := NewLookupPipeline(products, summaries, &recordingHistory{})
	_, err := p.RunLookup(context.Background(), "1")
	require.NoError(t, err)

	state, err := p.RunLookup(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrAlreadyShown)
	assert.Equal(t, domain.PhaseSummarized, state.Phase)
	assert.Equal(t, int32(1), products.calls.Load())

	// a different code is looked up normally
	_, err = p.RunLookup(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, int32(2), products.calls.Load())
}

func TestLookupPipeline_RetryAfterProductError(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	products := &mockProductClient{getFunc: func(ctx context.Context, code string) (*domain.Product, error) {
		if fail.Load() {
			return nil, domain.ErrProductFetchFailed
		}
		return oats(ctx, code)
	}}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "ok", nil
	}}

	p := NewLookupPipeline(products, summaries, &recordingHistory{})
	_, err := p.RunLookup(context.Background(), "1")
	require.ErrorIs(t, err, domain.ErrProductFetchFailed)

	fail.Store(false)
	state, err := p.RunLookup(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSummarized, state.Phase)
}

func TestLookupPipeline_SelectFromHistoryDoesNotRecord(t *testing.T) {
	ctx := context.Background()
	history := NewHistoryStore(storage.NewMemoryStorage(), nil)
	for _, code := range []string{"A", "B", "C"} {
		require.NoError(t, history.Record(ctx, code))
	}
	products := &mockProductClient{getFunc: oats}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "ok", nil
	}}

	p := NewLookupPipeline(products, summaries, history)
	state, err := p.SelectFromHistory(ctx, "A")

	require.NoError(t, err)
	assert.Equal(t, "A", state.Code)
	assert.Equal(t, []string{"C", "B", "A"}, history.Entries())
}

func TestLookupPipeline_ResetDiscardsInFlightResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	products := &mockProductClient{getFunc: func(ctx context.Context, code string) (*domain.Product, error) {
		close(started)
		<-release
		return oats(ctx, code)
	}}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "ok", nil
	}}

	p := NewLookupPipeline(products, summaries, &recordingHistory{})

	done := make(chan error, 1)
	go func() {
		_, err := p.RunLookup(context.Background(), "A")
		done <- err
	}()
	<-started

	p.Reset()
	assert.True(t, p.InFlight(), "reset attempt holds the claim until it settles")
	assert.Equal(t, domain.PhaseIdle, p.State().Phase)

	close(release)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrLookupSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("lookup did not return")
	}
	assert.False(t, p.InFlight())

	state := p.State()
	assert.Equal(t, domain.PhaseIdle, state.Phase)
	assert.Nil(t, state.Product)
	assert.Zero(t, summaries.calls.Load())
}

func TestLookupPipeline_ResetKeepsSingleFlight(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var active, peak atomic.Int32
	products := &mockProductClient{getFunc: func(ctx context.Context, code string) (*domain.Product, error) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		if code == "old" {
			close(firstStarted)
			<-releaseFirst
		}
		return &domain.Product{Code: code, Name: code}, nil
	}}
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "summary of " + req.ProductName, nil
	}}

	p := NewLookupPipeline(products, summaries, &recordingHistory{})

	done := make(chan error, 1)
	go func() {
		_, err := p.RunLookup(context.Background(), "old")
		done <- err
	}()
	<-firstStarted

	p.Reset()
	_, err := p.RunLookup(context.Background(), "new")
	assert.ErrorIs(t, err, domain.ErrLookupInProgress)
	assert.Equal(t, int32(1), products.calls.Load())

	close(releaseFirst)
	require.ErrorIs(t, <-done, domain.ErrLookupSuperseded)
	assert.Equal(t, domain.PhaseIdle, p.State().Phase)
	assert.Zero(t, summaries.calls.Load())

	state, err := p.RunLookup(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, "summary of new", state.Summary)
	assert.Equal(t, "new", p.State().Code)
	assert.False(t, p.InFlight())
	assert.Equal(t, int32(1), peak.Load())
}

func TestLookupPipeline_ResetDuringSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary func() (string, error)
	}{
		{"summary succeeds", func() (string, error) { return "late text", nil }},
		{"summary fails", func() (string, error) { return "", domain.ErrSummaryUnavailable }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			started := make(chan struct{})
			release := make(chan struct{})
			summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
				close(started)
				<-release
				return tt.summary()
			}}
			p := NewLookupPipeline(&mockProductClient{getFunc: oats}, summaries, &recordingHistory{})

			done := make(chan struct{})
			var (
				state domain.LookupState
				err   error
			)
			go func() {
				defer close(done)
				state, err = p.RunLookup(context.Background(), "7311870010970")
			}()
			<-started

			p.Reset()
			close(release)
			<-done

			assert.ErrorIs(t, err, domain.ErrLookupSuperseded)
			assert.Empty(t, state.Summary)
			assert.Equal(t, domain.PhaseIdle, p.State().Phase)
			assert.False(t, p.InFlight())
		})
	}
}

func TestLookupPipeline_ResetReturnsIdle(t *testing.T) {
	var got []domain.LookupState
	summaries := &mockSummaryClient{summarizeFunc: func(ctx context.Context, req domain.SummaryRequest) (string, error) {
		return "ok", nil
	}}
	p := NewLookupPipeline(&mockProductClient{getFunc: oats}, summaries, &recordingHistory{},
		WithObserver(func(s domain.LookupState) { got = append(got, s) }))

	_, err := p.RunLookup(context.Background(), "1")
	require.NoError(t, err)
	seen := len(got)

	state := p.Reset()

	assert.Equal(t, domain.PhaseIdle, state.Phase)
	assert.Equal(t, uint64(2), state.Attempt)
	assert.Equal(t, state, p.State())
	assert.Len(t, got, seen, "reset state goes to the caller, not the observer")
}
