package view

import (
	"log/slog"
	"sync"

	"github.com/meltforce/mapty/internal/app"
)

// List keeps rendered workout entries, newest first.
type List struct {
	mu      sync.Mutex
	entries []app.ListEntry
}

var _ app.ListRenderer = (*List)(nil)

func NewList() *List { return &List{} }

func (l *List) RenderWorkout(entry app.ListEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]app.ListEntry{entry}, l.entries...)
}

func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Entries returns a copy of the rendered entries.
func (l *List) Entries() []app.ListEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]app.ListEntry(nil), l.entries...)
}

// Notices collects user-visible notices and mirrors them to the log.
type Notices struct {
	mu      sync.Mutex
	log     *slog.Logger
	notices []app.Notice
}

var _ app.Notifier = (*Notices)(nil)

func NewNotices(log *slog.Logger) *Notices { return &Notices{log: log} }

func (n *Notices) Notify(notice app.Notice) {
	n.mu.Lock()
	n.notices = append(n.notices, notice)
	n.mu.Unlock()
	if n.log != nil {
		n.log.Info("notice", "level", string(notice.Level), "message", notice.Message)
	}
}

// All returns every notice raised so far, oldest first.
func (n *Notices) All() []app.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]app.Notice(nil), n.notices...)
}
