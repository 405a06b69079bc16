// Command editcheck classifies a batch of transcript-correction pairs as
// major or minor edits. It reads tab-separated pairs (original, corrected),
// one per line, and writes the comma-joined label sequence in input order.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/transcriptlab/editcheck/internal/batch"
	"github.com/transcriptlab/editcheck/internal/config"
	"github.com/transcriptlab/editcheck/internal/feature"
	"github.com/transcriptlab/editcheck/internal/normalize"
	"github.com/transcriptlab/editcheck/internal/observe"
	"github.com/transcriptlab/editcheck/internal/review"
	"github.com/transcriptlab/editcheck/pkg/classifier/onnx"
	"github.com/transcriptlab/editcheck/pkg/lexicon"
	lexfile "github.com/transcriptlab/editcheck/pkg/lexicon/file"
	lexpg "github.com/transcriptlab/editcheck/pkg/lexicon/postgres"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	inputPath := flag.String("input", "", "tab-separated pairs file; \"-\" or empty reads stdin")
	outputPath := flag.String("output", "", "labels output file; empty writes stdout")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "editcheck: config file %q not found; copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "editcheck: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	slog.Info("editcheck starting",
		"config", *configPath,
		"lexicon_store", cfg.Lexicon.Store,
		"workers", cfg.Workers,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Lexicon ───────────────────────────────────────────────────────────────
	lex, closeLex, err := openLexicon(ctx, cfg.Lexicon)
	if err != nil {
		slog.Error("failed to open lexicon", "err", err)
		return 1
	}
	defer closeLex()

	// ── Classifier ────────────────────────────────────────────────────────────
	model, err := onnx.New(onnx.Config{
		ModelPath:   cfg.Classifier.ModelPath,
		LibraryPath: cfg.Classifier.ORTLibrary,
		InputName:   cfg.Classifier.InputName,
		OutputName:  cfg.Classifier.OutputName,
	})
	if err != nil {
		slog.Error("failed to load classifier", "err", err)
		return 1
	}
	defer model.Close()

	// ── Pipeline ──────────────────────────────────────────────────────────────
	reviewer := review.New(
		normalize.New(lex),
		feature.New(lex, feature.WithEpsilon(cfg.Epsilon)),
		model,
	)
	runner := batch.NewRunner(reviewer, batch.WithWorkers(cfg.Workers))

	// ── Input ─────────────────────────────────────────────────────────────────
	in := os.Stdin
	if *inputPath != "" && *inputPath != "-" {
		f, err := os.Open(*inputPath)
		if err != nil {
			slog.Error("failed to open input", "err", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	pairs, err := batch.ReadPairs(in)
	if err != nil {
		slog.Error("failed to read pairs", "err", err)
		return 1
	}
	slog.Info("pairs loaded", "count", len(pairs))

	// ── Run ───────────────────────────────────────────────────────────────────
	labels, err := runner.Run(ctx, pairs)
	if err != nil {
		slog.Error("batch run failed", "err", err)
		return 1
	}

	// ── Output ────────────────────────────────────────────────────────────────
	var out io.Writer = os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			slog.Error("failed to create output", "err", err)
			return 1
		}
		defer f.Close()
		out = f
	}
	if _, err := fmt.Fprintln(out, batch.FormatLabels(labels)); err != nil {
		slog.Error("failed to write labels", "err", err)
		return 1
	}

	slog.Info("done", "pairs", len(pairs))
	return 0
}

// openLexicon builds the configured lexicon store and returns it with its
// cleanup function.
func openLexicon(ctx context.Context, cfg config.LexiconConfig) (lexicon.Lexicon, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		store, err := lexpg.NewStore(ctx, cfg.PostgresDSN, cfg.Dimensions)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		table, err := lexfile.Open(cfg.VocabPath, cfg.VectorsPath, cfg.Dimensions)
		if err != nil {
			return nil, nil, err
		}
		return table, func() { _ = table.Close() }, nil
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
