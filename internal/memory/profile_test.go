package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileUpsertAndGet(t *testing.T) {
	s := NewInMemoryProfileStore()
	_, ok := s.Get("alice")
	require.False(t, ok)

	s.Upsert(Profile{UserID: "alice", Name: "Alice", Favorites: []string{"dogs"}})
	p, ok := s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, []string{"dogs"}, p.Favorites)
}

func TestProfileTouchLastSeen(t *testing.T) {
	s := NewInMemoryProfileStore()
	p := s.TouchLastSeen("bob", 100)
	assert.Equal(t, int64(100), p.LastSeenMs)

	p2 := s.TouchLastSeen("bob", 200)
	assert.Equal(t, int64(200), p2.LastSeenMs)
}

func TestMemoryAppendSearchDeleteRoundTrip(t *testing.T) {
	s := NewInMemoryMemoryStore()
	entry := s.Append("the user prefers dim lighting in the evening", []string{"preference"}, 5, 1000)

	found := s.Search("dim lighting", 10)
	require.Len(t, found, 1)
	assert.Equal(t, entry.MemoryID, found[0].MemoryID)

	ok := s.Delete(entry.MemoryID)
	require.True(t, ok)

	assert.Empty(t, s.Search("dim lighting", 10))
}

func TestMemorySearchOrdersByImportanceThenRecency(t *testing.T) {
	s := NewInMemoryMemoryStore()
	s.Append("low importance note", nil, 1, 1000)
	high := s.Append("high importance note", nil, 9, 500)
	newer := s.Append("another high importance note", nil, 9, 1500)

	results := s.Search("importance", 10)
	require.Len(t, results, 3)
	assert.Equal(t, newer.MemoryID, results[0].MemoryID)
	assert.Equal(t, high.MemoryID, results[1].MemoryID)
}

func TestMemorySearchRespectsLimit(t *testing.T) {
	s := NewInMemoryMemoryStore()
	for i := 0; i < 5; i++ {
		s.Append("repeated note", nil, 0, int64(i))
	}
	assert.Len(t, s.Search("repeated", 2), 2)
}
