// Package recorder persists briefing runs for later analysis. Nothing here
// feeds back into computation; the database is write-only for the bot.
package recorder

import "marketbrief/internal/briefing"

// Recorder persists one finished run.
type Recorder interface {
	RecordRun(rep *briefing.Report) error
	Close() error
}
