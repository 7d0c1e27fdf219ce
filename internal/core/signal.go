package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Signal types understood by a running pipeline.
const (
	SignalLog             = "log"
	SignalExecuteSnapshot = "execute-snapshot"
	SignalStopSnapshot    = "stop-snapshot"
	SignalPauseSnapshot   = "pause-snapshot"
	SignalResumeSnapshot  = "resume-snapshot"
)

// SnapshotMode selects how an execute-snapshot signal runs.
// Ad-hoc (incremental) and blocking snapshots share the execute-snapshot wire
// type and differ only in the payload's "type" field.
type SnapshotMode string

const (
	SnapshotIncremental SnapshotMode = "incremental"
	SnapshotBlocking    SnapshotMode = "blocking"
)

// Signal is an out-of-band command sent to a deployed pipeline.
// Data is the encoded payload whose shape depends on Type.
type Signal struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// SnapshotCondition narrows a snapshot of one collection with a filter.
type SnapshotCondition struct {
	DataCollection string `json:"data-collection"`
	Filter         string `json:"filter"`
}

type logPayload struct {
	Message string `json:"message"`
}

type snapshotPayload struct {
	DataCollections      []string            `json:"data-collections"`
	Type                 SnapshotMode        `json:"type"`
	AdditionalConditions []SnapshotCondition `json:"additional-conditions,omitempty"`
}

// LogSignal asks the pipeline to write message to its log.
func LogSignal(message string) (Signal, error) {
	return newSignal(SignalLog, logPayload{Message: message})
}

// SnapshotSignal starts an ad-hoc (incremental) or blocking snapshot of collections.
func SnapshotSignal(mode SnapshotMode, collections []string, conditions []SnapshotCondition) (Signal, error) {
	if len(collections) == 0 {
		return Signal{}, InvalidArgument("snapshot signal requires at least one data collection")
	}
	switch mode {
	case "":
		mode = SnapshotIncremental
	case SnapshotIncremental, SnapshotBlocking:
	default:
		return Signal{}, InvalidArgument("snapshot mode %s not supported", mode)
	}
	return newSignal(SignalExecuteSnapshot, snapshotPayload{
		DataCollections:      collections,
		Type:                 mode,
		AdditionalConditions: conditions,
	})
}

// StopSnapshotSignal stops a running incremental snapshot. An empty
// collection list stops the whole snapshot.
func StopSnapshotSignal(collections []string) (Signal, error) {
	if collections == nil {
		collections = []string{}
	}
	return newSignal(SignalStopSnapshot, snapshotPayload{
		DataCollections: collections,
		Type:            SnapshotIncremental,
	})
}

// PauseSnapshotSignal pauses a running incremental snapshot.
func PauseSnapshotSignal() (Signal, error) {
	return newSignal(SignalPauseSnapshot, struct{}{})
}

// ResumeSnapshotSignal resumes a paused incremental snapshot.
func ResumeSnapshotSignal() (Signal, error) {
	return newSignal(SignalResumeSnapshot, struct{}{})
}

// Normalize fills a missing ID and validates the signal type.
func (s Signal) Normalize() (Signal, error) {
	s.Type = strings.TrimSpace(s.Type)
	if s.Type == "" {
		return Signal{}, InvalidArgument("signal type is required")
	}
	if strings.TrimSpace(s.ID) == "" {
		s.ID = uuid.NewString()
	}
	if s.Data == "" {
		s.Data = "{}"
	}
	return s, nil
}

func newSignal(signalType string, payload any) (Signal, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Signal{}, fmt.Errorf("encode %s payload: %w", signalType, err)
	}
	return Signal{ID: uuid.NewString(), Type: signalType, Data: string(data)}, nil
}
