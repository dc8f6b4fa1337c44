// Package config implements the flag-based CLI configuration used by
// cmd/beatbox (cmd/midiverify declares its own flag), following the teacher's config.Parse
// pattern of a single flag.Parse() call building a Config value.
package config

import (
	"flag"
	"os"
)

// Config holds every flag cmd/beatbox accepts. Defaults reproduce
// spec.md's own defaults so "beatbox -in in.wav" works with no other
// flags.
type Config struct {
	InputPath  string
	OutputDir  string
	LogLevel   string

	Theme            string
	Template         string
	TimeSignature    string
	Division         string
	Feel             string
	SwingAmount      float64
	BarCount         int
	BPMOverride      float64
	QuantizeStrength float64
	LookaheadMs      float64
	BEmphasis        float64

	CalibrationPath string
}

// Parse parses os.Args into a Config, the same flag.Parse()-at-the-top-level
// idiom the teacher's cmd/engine uses.
func Parse() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.InputPath, "in", "", "input WAV file (required)")
	flag.StringVar(&cfg.OutputDir, "out", ".", "output directory for .mid, .wav and .json artifacts")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	flag.StringVar(&cfg.Theme, "theme", "midnight_drive", "theme name (see internal/theme)")
	flag.StringVar(&cfg.Template, "template", "SynthwaveStraight", "arrangement template (SynthwaveStraight, SynthwaveHalftime, ArpDrive)")
	flag.StringVar(&cfg.TimeSignature, "time-signature", "4/4", "time signature (4/4 or 3/4)")
	flag.StringVar(&cfg.Division, "division", "1/16", "grid division (1/4, 1/8, 1/16, triplet)")
	flag.StringVar(&cfg.Feel, "feel", "straight", "rhythmic feel (straight, swing, halftime)")
	flag.Float64Var(&cfg.SwingAmount, "swing", 0.0, "swing amount in [0,1], only applied to 1/8 or 1/16 divisions under swing feel")
	flag.IntVar(&cfg.BarCount, "bars", 8, "arrangement length in bars")
	flag.Float64Var(&cfg.BPMOverride, "bpm", 0, "override the estimated tempo (0 = auto-detect)")
	flag.Float64Var(&cfg.QuantizeStrength, "quantize-strength", 1.0, "quantize snap strength in [0,1]")
	flag.Float64Var(&cfg.LookaheadMs, "lookahead-ms", 40.0, "lookahead window beyond half a slot before an event is dropped")
	flag.Float64Var(&cfg.BEmphasis, "b-emphasis", 0.0, "bilabial-plosive (kick) emphasis bias in [0,1]")

	flag.StringVar(&cfg.CalibrationPath, "calibration", "", "path to a calibration profile JSON file (optional)")

	flag.Parse()
	return cfg
}

// OutputDataDir resolves a default artifact directory the way the teacher
// resolves its data directory: an environment override, falling back to a
// fixed path under the user's home directory.
func OutputDataDir() string {
	if dir := os.Getenv("BEATBOX_OUT_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".beatbox-out"
	}
	return home + "/.beatbox-out"
}
