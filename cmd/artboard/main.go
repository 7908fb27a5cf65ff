package main

import (
	"fmt"
	"os"

	"artboard/internal/app"
	"artboard/internal/canvas"
	"artboard/internal/config"
	"artboard/internal/editor"
	"artboard/internal/logging"

	"github.com/google/uuid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "artboard failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.WithSession(logging.Init(cfg.LogLevel, cfg.LogFormat), uuid.NewString())

	board := canvas.New(cfg.CanvasWidth, cfg.CanvasHeight, cfg.BackgroundColor(), "Untitled")
	session, err := editor.New(board, append(cfg.SessionOptions(), editor.WithLogger(logger))...)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	board.OnPathCompleted(session.PathCompleted)

	logger.Info("session started", "canvas_width", cfg.CanvasWidth, "canvas_height", cfg.CanvasHeight, "max_history", cfg.MaxHistory)
	return app.New(cfg, logger, board, session).Run()
}
