package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomRelay/internal/domain/models"
)

func TestEvictionJournalRepository_KeepsNewest(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	journal := NewEvictionJournalRepository(2)

	for _, id := range []string{"a", "b", "c"} {
		req.NoError(journal.Record(ctx, models.EvictionRecord{RoomID: id, Reason: models.ReasonEmpty}))
	}

	all, err := journal.List(ctx, 0)
	req.NoError(err)
	req.Len(all, 2)
	req.Equal("c", all[0].RoomID)
	req.Equal("b", all[1].RoomID)

	one, err := journal.List(ctx, 1)
	req.NoError(err)
	req.Len(one, 1)
	req.Equal("c", one[0].RoomID)
}
