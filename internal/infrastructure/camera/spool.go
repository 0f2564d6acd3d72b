package camera

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// SpoolSource is a frame source backed by a directory that a capture tool
// drops still frames into. Only one holder may have it open at a time.
type SpoolSource struct {
	dir    string
	maxDim int
	logger *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewSpoolSource creates a source for dir. Frames are downscaled to maxDim.
func NewSpoolSource(dir string, maxDim int, logger *zap.Logger) *SpoolSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	return &SpoolSource{
		dir:    dir,
		maxDim: maxDim,
		logger: logger.Named("camera"),
	}
}

// Open starts watching the spool directory. It fails with
// domain.ErrCameraUnavailable if the directory is missing or the source is
// already held.
func (s *SpoolSource) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return fmt.Errorf("%w: %s already in use", domain.ErrCameraUnavailable, s.dir)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrCameraUnavailable, s.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)
	}

	s.watcher = watcher
	s.logger.Info("watching frame spool", zap.String("dir", s.dir))
	return nil
}

// Next blocks until a new frame lands in the spool and returns it decoded.
// A frame that cannot be read or decoded is returned as an error; callers
// may keep calling Next.
func (s *SpoolSource) Next(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	watcher := s.watcher
	s.mu.Unlock()
	if watcher == nil {
		return nil, fmt.Errorf("%w: source not open", domain.ErrCameraUnavailable)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil, fmt.Errorf("%w: source closed", domain.ErrCameraUnavailable)
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isFrame(event.Name) {
				continue
			}
			return s.readFrame(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil, fmt.Errorf("%w: source closed", domain.ErrCameraUnavailable)
			}
			return nil, fmt.Errorf("watching spool: %w", err)
		}
	}
}

func (s *SpoolSource) readFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening frame: %w", err)
	}
	defer f.Close()

	img, err := DecodeFrame(f, s.maxDim)
	if err != nil {
		s.logger.Debug("skipping frame", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return img, nil
}

// Close releases the source. It is safe to call more than once.
func (s *SpoolSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	s.logger.Info("released frame spool", zap.String("dir", s.dir))
	return err
}

func isFrame(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}
