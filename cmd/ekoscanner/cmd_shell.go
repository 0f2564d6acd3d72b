package main

import (
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ekoscanner/ekoscanner/internal/delivery/tui"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/camera"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/scanner"
	"github.com/ekoscanner/ekoscanner/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runShell(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	events := tui.NewEvents()
	defer events.Close()

	a, err := newApp(ctx, true, usecase.WithObserver(events.PublishState))
	if err != nil {
		return err
	}
	defer a.Close()

	dir := frameDir
	if dir == "" {
		dir = a.cfg.Scanner.FrameDir
	}

	var handle *scanner.Handle
	if dir != "" {
		source := camera.NewSpoolSource(dir, a.cfg.Scanner.MaxDimension, a.logger)
		handle = scanner.Start(ctx, source, scanner.NewZXingDecoder(),
			events.PublishCode, events.PublishCameraError, scanner.WithLogger(a.logger))
		a.logger.Info("scanner started", zap.String("frame_dir", dir))
	}

	model := tui.New(ctx, a.pipeline, a.history, events)
	_, runErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	// Unblock publishers before waiting on the scanner goroutine.
	events.Close()
	if handle != nil {
		handle.Stop()
	}

	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("shell: %w", runErr)
	}
	return nil
}
