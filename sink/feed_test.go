package sink

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"noteboard/domain"
	"noteboard/domain/event"
)

func TestFeed_BuildsTimelineFromEvents(t *testing.T) {
	req := require.New(t)
	feed := NewFeed()
	ctx := context.Background()

	alice := domain.Address{0xAA}
	at := time.Now().UTC()
	for i := range 3 {
		req.NoError(feed.Consume(ctx, event.NoteStored{
			ID:      uint64(i),
			Sender:  alice,
			Content: "gm",
			At:      at,
			Fee:     big.NewInt(10),
		}))
	}
	// Other event kinds are ignored by the feed.
	req.NoError(feed.Consume(ctx, event.FeeChanged{OldFee: big.NewInt(10), NewFee: big.NewInt(0)}))

	req.Equal(3, feed.Len())
	notes := feed.Notes()
	for i, note := range notes {
		req.Equal(uint64(i), note.ID)
		req.Equal(alice, note.Sender)
	}
}
