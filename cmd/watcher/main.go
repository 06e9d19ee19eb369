package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/oumizumi/leethub/internal/config"
	"github.com/oumizumi/leethub/internal/detect"
)

// inputLine is one newline-delimited JSON record on stdin: either a page
// snapshot from the page-context collaborator, or a control action.
type inputLine struct {
	Action string `json:"action,omitempty"`
	detect.Snapshot
}

const actionManualPush = "MANUAL_PUSH"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	page := detect.NewSnapshotPage()
	backend := detect.NewHTTPBackend(cfg.APIBaseURL, cfg.MessageTimeout, logger)
	engine := detect.NewEngine(page, backend, detect.Config{
		PollInterval: cfg.PollInterval,
		SettleDelay:  cfg.SettleDelay,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go readSnapshots(ctx, page, engine, logger)

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("watcher stopped: %v", err)
	}

	logger.Info().Msg("watcher stopped")
}

func readSnapshots(ctx context.Context, page *detect.SnapshotPage, engine *detect.Engine, logger zerolog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line inputLine
		if err := json.Unmarshal(raw, &line); err != nil {
			logger.Warn().Err(err).Msg("skipping malformed input line")
			continue
		}

		if line.Action == actionManualPush {
			if err := engine.ExtractNow(ctx); err != nil {
				logger.Warn().Err(err).Msg("manual push refused")
			}
			continue
		}

		page.Update(line.Snapshot)
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("stdin closed with error")
	}
}
