// Command beatbox runs the full pipeline over a WAV recording of a
// beatboxed rhythm and writes a MIDI file, a rendered WAV and a decision
// record JSON sidecar.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/cartomix/beatbox/internal/calibration"
	"github.com/cartomix/beatbox/internal/config"
	"github.com/cartomix/beatbox/internal/model"
	"github.com/cartomix/beatbox/internal/pipeline"
	"github.com/cartomix/beatbox/internal/report"
)

func main() {
	cfg := config.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if cfg.InputPath == "" {
		logger.Error("missing required -in flag")
		os.Exit(2)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	raw, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var calibrationProfile *model.CalibrationProfile
	if cfg.CalibrationPath != "" {
		calibrationProfile, err = calibration.Load(cfg.CalibrationPath)
		if err != nil {
			return fmt.Errorf("load calibration profile: %w", err)
		}
	}

	params, err := buildParameters(cfg, calibrationProfile)
	if err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}

	logger.Info("running pipeline",
		"input", cfg.InputPath, "theme", params.Theme, "template", params.Template)

	result, err := pipeline.Run(ctx, raw, params)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		logger.Warn(w)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	midiPath := filepath.Join(cfg.OutputDir, "arrangement.mid")
	if err := os.WriteFile(midiPath, result.MIDI, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", midiPath, err)
	}

	wavPath := filepath.Join(cfg.OutputDir, "arrangement.wav")
	if err := os.WriteFile(wavPath, result.WAV, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", wavPath, err)
	}

	jsonPath := filepath.Join(cfg.OutputDir, "decisions.json")
	f, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", jsonPath, err)
	}
	defer f.Close()
	doc := report.Document{
		BPM:       result.BPM,
		BarCount:  result.Arrangement.BarCount,
		Template:  result.Arrangement.Template,
		Warnings:  result.Warnings,
		Decisions: result.Decisions,
	}
	if err := report.Write(f, doc); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}

	logger.Info("wrote artifacts", "midi", midiPath, "wav", wavPath, "decisions", jsonPath, "bpm", result.BPM)
	return nil
}

func buildParameters(cfg *config.Config, profile *model.CalibrationProfile) (model.Parameters, error) {
	timeSig, err := parseTimeSignature(cfg.TimeSignature)
	if err != nil {
		return model.Parameters{}, err
	}
	division, err := parseDivision(cfg.Division)
	if err != nil {
		return model.Parameters{}, err
	}
	feel, err := parseFeel(cfg.Feel)
	if err != nil {
		return model.Parameters{}, err
	}

	return model.Parameters{
		Theme:              cfg.Theme,
		BPMOverride:        cfg.BPMOverride,
		TimeSignature:      timeSig,
		Division:           division,
		Feel:               feel,
		SwingAmount:        cfg.SwingAmount,
		BarCount:           cfg.BarCount,
		QuantizeStrength:   cfg.QuantizeStrength,
		LookaheadMs:        cfg.LookaheadMs,
		BEmphasis:          cfg.BEmphasis,
		Template:           model.TemplateName(cfg.Template),
		CalibrationProfile: profile,
	}, nil
}

func parseTimeSignature(s string) (model.TimeSignature, error) {
	switch s {
	case "4/4":
		return model.TimeSignature4_4, nil
	case "3/4":
		return model.TimeSignature3_4, nil
	default:
		return model.TimeSignature{}, fmt.Errorf("unsupported time signature %q (want 4/4 or 3/4)", s)
	}
}

func parseDivision(s string) (model.Division, error) {
	switch model.Division(s) {
	case model.DivisionQuarter, model.DivisionEighth, model.DivisionSixteenth, model.DivisionTriplet:
		return model.Division(s), nil
	default:
		return "", fmt.Errorf("unsupported division %q", s)
	}
}

func parseFeel(s string) (model.Feel, error) {
	switch model.Feel(s) {
	case model.FeelStraight, model.FeelSwing, model.FeelHalftime:
		return model.Feel(s), nil
	default:
		return "", fmt.Errorf("unsupported feel %q", s)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
