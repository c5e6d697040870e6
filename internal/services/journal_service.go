package services

import (
	"context"

	"aegis/internal/journal"
)

// DefaultJournalLimit is the number of entries listed when no limit is given.
const DefaultJournalLimit = 20

// JournalService exposes the exchange journal to the session service and the shell.
// A service over a nil journal records nothing and lists nothing.
type JournalService struct {
	journal *journal.Journal
}

// NewJournalService wraps j, which may be nil when journaling is disabled.
func NewJournalService(j *journal.Journal) *JournalService {
	return &JournalService{journal: j}
}

// Name returns the service name.
func (s *JournalService) Name() string {
	return "journal"
}

// Enabled reports whether exchanges are being persisted.
func (s *JournalService) Enabled() bool {
	return s.journal != nil
}

// Path returns the journal database path, or "" when disabled.
func (s *JournalService) Path() string {
	return s.journal.Path()
}

// Record implements Recorder.
func (s *JournalService) Record(ctx context.Context, entry journal.Entry) (journal.Entry, error) {
	return s.journal.Record(ctx, entry)
}

// Recent lists the latest entries, optionally filtered by bot, newest first.
func (s *JournalService) Recent(ctx context.Context, bot string, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	return s.journal.Recent(ctx, bot, limit)
}

// Shutdown closes the journal database.
func (s *JournalService) Shutdown() error {
	return s.journal.Close()
}
