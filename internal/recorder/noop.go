package recorder

import "marketbrief/internal/briefing"

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *briefing.Report) error { return nil }
func (n *NoopRecorder) Close() error                       { return nil }
