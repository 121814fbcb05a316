package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"commonroom/storage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPostFilter(t *testing.T) {
	filter := postFilter(PostQuery{AuthorHandles: []string{"a"}, Participant: "b"})
	require.Len(t, filter, 2)
	assert.Equal(t, "userInfo.username", filter[0].Key)
	assert.Equal(t, bson.D{{"$in", []string{"a"}}}, filter[0].Value)
	assert.Equal(t, "$or", filter[1].Key)
	assert.Len(t, filter[1].Value, 3)

	assert.Empty(t, postFilter(PostQuery{}))
	assert.Empty(t, userFilter(UserQuery{}))
	assert.Equal(t, "$or", userFilter(UserQuery{EdgeHandle: "x"})[0].Key)
}

func TestMongoManager_Integration(t *testing.T) {
	uri := os.Getenv("COMMONROOM_MONGO_URI")
	if testing.Short() || uri == "" {
		t.Skip("COMMONROOM_MONGO_URI not set")
	}
	ctx := context.Background()

	m, err := NewMongoManager(ctx, uri, "commonroom_test")
	require.NoError(t, err)
	defer func() {
		_ = m.dbConnection.Drop(ctx)
		_ = m.Close(ctx)
	}()

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, m.SaveUser(ctx, &models.User{ID: "u1", Username: "alice", CreatedAt: now}))
	require.NoError(t, m.SaveUser(ctx, &models.User{ID: "u2", Username: "bob", CreatedAt: now.Add(time.Minute)}))
	assert.ErrorIs(t, m.SaveUser(ctx, &models.User{ID: "u3", Username: "bob", CreatedAt: now}), ErrDuplicate)

	users, err := m.FindUsers(ctx, UserQuery{Order: NewestFirst})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)

	p := post("p1", "u1", "alice", now)
	p.Comments = []models.Comment{{ID: "c1", UserInfo: models.IdentitySnapshot{Username: "bob"}}}
	require.NoError(t, m.SavePost(ctx, p))

	got, err := m.FindPosts(ctx, PostQuery{Participant: "bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(got))

	require.NoError(t, m.DeletePost(ctx, "p1"))
	_, err = m.FindPostByID(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}
