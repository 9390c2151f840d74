package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWSConnectionRepository(t *testing.T) {
	req := require.New(t)
	repo := NewWSConnectionRepository()

	a, b := newStubConn(), newStubConn()
	repo.Add(a)
	repo.Add(b)
	req.Equal(2, repo.Count())

	got, ok := repo.Get(a.ID())
	req.True(ok)
	req.Equal(a.ID(), got.ID())

	repo.Remove(a.ID())
	_, ok = repo.Get(a.ID())
	req.False(ok)

	repo.CloseAll()
	req.True(b.isClosed())
	req.False(a.isClosed())
}
