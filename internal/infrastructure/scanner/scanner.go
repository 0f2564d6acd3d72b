package scanner

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"go.uber.org/zap"
)

// Handle controls a running scanner
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures Start
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the scanner logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Start scans frames from source on a new goroutine and returns at once.
//
// onCode is called for each decoded value that differs from the last value
// emitted. onError is called at most once, with domain.ErrCameraUnavailable,
// if the source cannot be opened or is lost; scanning then stops. Both
// callbacks run on the scanning goroutine. Once opened, the source is closed
// when the goroutine exits.
func Start(
	ctx context.Context,
	source domain.FrameSource,
	decoder SymbolDecoder,
	onCode func(string),
	onError func(error),
	opts ...Option,
) *Handle {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go h.run(ctx, source, decoder, onCode, onError, o.logger.Named("scanner"))

	return h
}

// Stop ends scanning and waits until the source has been released.
// It is safe to call more than once, and before the source finished opening.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the scanning goroutine has exited
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) run(
	ctx context.Context,
	source domain.FrameSource,
	decoder SymbolDecoder,
	onCode func(string),
	onError func(error),
	logger *zap.Logger,
) {
	defer close(h.done)

	// A failed Open releases what it acquired; the source may belong to another scanner.
	if err := source.Open(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Warn("camera unavailable", zap.Error(err))
		report(onError, err)
		return
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn("closing frame source", zap.Error(err))
		}
	}()
	logger.Debug("scanning")

	var last string
	for {
		img, err := source.Next(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, domain.ErrCameraUnavailable) {
				logger.Warn("camera lost", zap.Error(err))
				report(onError, err)
				return
			}
			continue
		}

		code, err := decoder.Decode(img)
		if err != nil || code == "" {
			continue
		}
		if code == last {
			continue
		}
		last = code

		logger.Debug("barcode decoded", zap.String("code", code))
		if onCode != nil {
			onCode(code)
		}
	}
}

func report(onError func(error), err error) {
	if onError == nil {
		return
	}
	if !errors.Is(err, domain.ErrCameraUnavailable) {
		err = fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}
	onError(err)
}
