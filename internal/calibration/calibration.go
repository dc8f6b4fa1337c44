// Package calibration loads and saves per-class threshold multiplier
// profiles produced by offline calibration runs (spec.md Design Notes:
// "Calibration profile"), following the teacher's config package's
// load-from-JSON-file convention (internal/config/config.go).
package calibration

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cartomix/beatbox/internal/model"
)

// Load reads a CalibrationProfile from a JSON file. A missing file is not
// an error: callers get a nil profile, which classify.Classify treats as
// the identity multiplier for every class.
func Load(path string) (*model.CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read calibration profile %s: %w", path, err)
	}

	var profile model.CalibrationProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse calibration profile %s: %w", path, err)
	}
	return &profile, nil
}

// Save writes a CalibrationProfile to a JSON file, pretty-printed the same
// way the teacher formats its config and fixture JSON output.
func Save(path string, profile *model.CalibrationProfile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal calibration profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write calibration profile %s: %w", path, err)
	}
	return nil
}
