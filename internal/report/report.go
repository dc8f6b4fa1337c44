// Package report writes the explainability DecisionRecord stream produced
// by a pipeline run as JSON, the arranger's analog of the teacher's
// exporter writing a JSON sidecar alongside each playlist export.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cartomix/beatbox/internal/model"
)

// Document is the top-level JSON shape written to the decision-record
// sidecar file.
type Document struct {
	BPM       float64               `json:"bpm"`
	BarCount  int                   `json:"bar_count"`
	Template  model.TemplateName    `json:"template"`
	Warnings  []string              `json:"warnings,omitempty"`
	Decisions []model.DecisionRecord `json:"decisions"`
}

// Write serializes a Document as indented JSON to w.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode decision record document: %w", err)
	}
	return nil
}

// BuildDecisionRecords reconciles classified events, their quantized
// timestamps and the arrangement's notes into one DecisionRecord per
// input event — "mapped_to" lists every lane the event's note ended up in
// (normally one, since an event maps to exactly one class-derived lane).
func BuildDecisionRecords(quantized []model.QuantizedEvent, arrangement model.Arrangement) []model.DecisionRecord {
	mappedBySource := make(map[string][]string)
	for _, lane := range arrangement.AllLanes() {
		for _, n := range lane.Events {
			if n.SourceEventID == "" {
				continue
			}
			mappedBySource[n.SourceEventID] = append(mappedBySource[n.SourceEventID], lane.Name)
		}
	}

	records := make([]model.DecisionRecord, 0, len(quantized))
	for _, qe := range quantized {
		records = append(records, model.DecisionRecord{
			EventID:              qe.Event.ID,
			OriginalTimestampMs:  qe.OriginalTimestampMs,
			QuantizedTimestampMs: qe.QuantizedTimestampMs,
			SnapDeltaMs:          qe.SnapDeltaMs,
			Class:                qe.Event.Class,
			Confidence:           qe.Event.Confidence,
			MappedTo:             mappedBySource[qe.Event.ID],
			Features:             qe.Event.Features,
		})
	}
	return records
}
