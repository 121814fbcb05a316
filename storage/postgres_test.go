package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"commonroom/storage/models"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostWhere(t *testing.T) {
	tests := []struct {
		name      string
		query     PostQuery
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "no predicates",
			query:     PostQuery{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "author id",
			query:     PostQuery{AuthorID: "u1"},
			wantWhere: " WHERE doc->'userInfo'->>'userId' = $1",
			wantArgs:  []any{"u1"},
		},
		{
			name:      "handles and liked by",
			query:     PostQuery{AuthorHandles: []string{"a", "b"}, LikedBy: "c"},
			wantWhere: " WHERE doc->'userInfo'->>'username' = ANY($1) AND doc->'likes' ? $2",
			wantArgs:  []any{[]string{"a", "b"}, "c"},
		},
		{
			name:  "participant",
			query: PostQuery{Participant: "bob"},
			wantWhere: " WHERE (doc->'likes' ? $1 OR doc->'dislikes' ? $1" +
				" OR doc->'comments' @> jsonb_build_array(jsonb_build_object('userInfo', jsonb_build_object('username', $1::text))))",
			wantArgs: []any{"bob"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildPostWhere(tt.query)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildSelectOrdering(t *testing.T) {
	q, args := buildPostSelect(PostQuery{Order: NewestFirst})
	assert.Equal(t, "SELECT doc FROM posts ORDER BY created_at DESC, seq", q)
	assert.Empty(t, args)

	q, args = buildUserSelect(UserQuery{EdgeHandle: "alice"})
	assert.Contains(t, q, "doc->'following' @>")
	assert.Contains(t, q, "doc->'followers' @>")
	assert.Contains(t, q, " ORDER BY seq")
	assert.Equal(t, []any{"alice"}, args)
}

func TestRunMigrations_PropagatesGooseError(t *testing.T) {
	dsn := os.Getenv("COMMONROOM_POSTGRES_DSN")
	if testing.Short() || dsn == "" {
		t.Skip("COMMONROOM_POSTGRES_DSN not set")
	}

	m, err := NewPostgresManager(context.Background(), dsn)
	require.NoError(t, err)
	defer m.Close(context.Background())

	original := gooseUpContext
	defer func() { gooseUpContext = original }()
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err = m.RunMigrations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPostgresManager_Integration(t *testing.T) {
	dsn := os.Getenv("COMMONROOM_POSTGRES_DSN")
	if testing.Short() || dsn == "" {
		t.Skip("COMMONROOM_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	m, err := NewPostgresManager(ctx, dsn)
	require.NoError(t, err)
	defer m.Close(ctx)
	require.NoError(t, m.RunMigrations(ctx))

	_, err = m.pool.Exec(ctx, "TRUNCATE users, posts")
	require.NoError(t, err)

	user := &models.User{ID: "u1", Username: "alice", CreatedAt: time.Now().UTC()}
	require.NoError(t, m.SaveUser(ctx, user))
	got, err := m.FindUserByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.ErrorIs(t, m.SaveUser(ctx, &models.User{ID: "u2", Username: "alice", CreatedAt: time.Now().UTC()}), ErrDuplicate)

	p := post("p1", "u1", "alice", time.Now().UTC())
	p.Likes = []string{"bob"}
	require.NoError(t, m.SavePost(ctx, p))

	liked, err := m.FindPosts(ctx, PostQuery{Participant: "bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(liked))

	deleted, err := m.DeletePosts(ctx, PostQuery{AuthorID: "u1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	require.NoError(t, m.DeleteUser(ctx, "u1"))
	assert.ErrorIs(t, m.DeleteUser(ctx, "u1"), ErrNotFound)
}
