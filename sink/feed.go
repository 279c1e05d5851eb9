package sink

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"noteboard/domain"
	"noteboard/domain/event"
)

// Feed holds a simple local timeline of stored notes, built purely from
// notifications. Useful as a cheap read model and as a test observer.
type Feed struct {
	mu    sync.RWMutex
	notes []domain.Note
}

func NewFeed() *Feed {
	return &Feed{}
}

func (f *Feed) Consume(_ context.Context, e event.Event) error {
	evt, ok := e.(event.NoteStored)
	if !ok {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, fromEvent(evt))
	return nil
}

// Notes returns a snapshot of the timeline.
func (f *Feed) Notes() []domain.Note {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return lo.Map(f.notes, func(n domain.Note, _ int) domain.Note { return n })
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.notes)
}

func fromEvent(evt event.NoteStored) domain.Note {
	return domain.Note{
		ID:      evt.ID,
		Sender:  evt.Sender,
		Content: evt.Content,
		At:      evt.At,
	}
}
