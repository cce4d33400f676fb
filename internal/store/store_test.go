package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tagpoll "github.com/anatolykoptev/go-tagpoll"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRemember_ReportsNewOnlyOnce(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := []tagpoll.Record{
		{ID: "2", Username: "@a", Text: "two", Timestamp: "2024-06-01 12:00:01"},
		{ID: "1", Username: "@b", Text: "one", Timestamp: "2024-06-01 11:00:00"},
	}
	fresh, err := s.Remember(ctx, "#go", first)
	require.NoError(t, err)
	assert.Equal(t, first, fresh)

	second := []tagpoll.Record{
		{ID: "3", Username: "@c", Text: "three", Timestamp: "2024-06-01 12:30:00"},
		{ID: "2", Username: "@a", Text: "two", Timestamp: "2024-06-01 12:00:01", LikeCount: 5},
	}
	fresh, err = s.Remember(ctx, "#go", second)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "3", fresh[0].ID)

	n, err := s.Count(ctx, "#go")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRemember_RefreshesEngagement(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Remember(ctx, "#go", []tagpoll.Record{{ID: "1", Username: "@a", Text: "x", Timestamp: "2024-06-01 12:00:00", LikeCount: 1}})
	require.NoError(t, err)
	_, err = s.Remember(ctx, "#go", []tagpoll.Record{{ID: "1", Username: "@a", Text: "x", Timestamp: "2024-06-01 12:00:00", LikeCount: 9, RetweetCount: 2}})
	require.NoError(t, err)

	recent, err := s.Recent(ctx, "#go", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 9, recent[0].LikeCount)
	assert.Equal(t, 2, recent[0].RetweetCount)
}

func TestRemember_Empty(t *testing.T) {
	s := setupTestStore(t)

	fresh, err := s.Remember(context.Background(), "#go", nil)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestCount_PerHashtag(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Remember(ctx, "#go", []tagpoll.Record{{ID: "1", Username: "@a", Text: "x", Timestamp: "t"}})
	require.NoError(t, err)
	_, err = s.Remember(ctx, "#rust", []tagpoll.Record{{ID: "2", Username: "@b", Text: "y", Timestamp: "t"}})
	require.NoError(t, err)

	n, err := s.Count(ctx, "#rust")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRemember_SamePostUnderTwoHashtags(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	post := []tagpoll.Record{{ID: "1", Username: "@a", Text: "#go #rust", Timestamp: "t"}}

	fresh, err := s.Remember(ctx, "#go", post)
	require.NoError(t, err)
	assert.Len(t, fresh, 1)

	fresh, err = s.Remember(ctx, "#rust", post)
	require.NoError(t, err)
	assert.Equal(t, post, fresh)

	for _, tag := range []string{"#go", "#rust"} {
		n, err := s.Count(ctx, tag)
		require.NoError(t, err)
		assert.Equal(t, 1, n, tag)

		recent, err := s.Recent(ctx, tag, 10)
		require.NoError(t, err)
		assert.Len(t, recent, 1, tag)
	}
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagpoll.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Remember(ctx, "#go", []tagpoll.Record{{ID: "1", Username: "@a", Text: "x", Timestamp: "t"}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	fresh, err := s.Remember(ctx, "#go", []tagpoll.Record{{ID: "1", Username: "@a", Text: "x", Timestamp: "t"}})
	require.NoError(t, err)
	assert.Empty(t, fresh)
}
