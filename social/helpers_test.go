package social

import (
	"commonroom/storage"
	"commonroom/storage/models"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx   context.Context
	store *storage.MemoryStore
	dir   *Directory
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	return &fixture{
		ctx:   context.Background(),
		store: store,
		dir:   NewDirectory(store, nil),
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fixture) user(t *testing.T, handle string) *models.User {
	t.Helper()
	u := &models.User{
		ID:        "id-" + handle,
		Name:      "Name " + handle,
		Username:  handle,
		Email:     handle + "@example.com",
		CreatedAt: f.tick(),
		Following: []models.FollowEdge{},
		Followers: []models.FollowEdge{},
	}
	require.NoError(t, f.store.SaveUser(f.ctx, u))
	return u
}

func (f *fixture) post(t *testing.T, author *models.User, body string) *models.Post {
	t.Helper()
	p := &models.Post{
		ID:        "post-" + body,
		UserInfo:  author.Snapshot().AuthorInfo(),
		Body:      body,
		CreatedAt: f.tick(),
		Comments:  []models.Comment{},
		Reactions: models.Reactions{Likes: []string{}, Dislikes: []string{}},
	}
	require.NoError(t, f.store.SavePost(f.ctx, p))
	return p
}

func (f *fixture) comment(t *testing.T, post *models.Post, author *models.User, body string) models.Comment {
	t.Helper()
	c := models.Comment{
		ID:        "comment-" + body,
		UserInfo:  author.Snapshot().AuthorInfo(),
		Body:      body,
		CreatedAt: f.tick(),
	}
	post.Comments = append([]models.Comment{c}, post.Comments...)
	post.CommentCount++
	require.NoError(t, f.store.SavePost(f.ctx, post))
	return c
}

func (f *fixture) reloadUser(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.store.FindUserByID(f.ctx, id)
	require.NoError(t, err)
	return u
}

func (f *fixture) reloadPost(t *testing.T, id string) *models.Post {
	t.Helper()
	p, err := f.store.FindPostByID(f.ctx, id)
	require.NoError(t, err)
	return p
}

// failingStore fails every save once armed.
type failingStore struct {
	*storage.MemoryStore
	fail bool
}

var errStorage = errors.New("storage unavailable")

func (s *failingStore) SaveUser(ctx context.Context, u *models.User) error {
	if s.fail {
		return errStorage
	}
	return s.MemoryStore.SaveUser(ctx, u)
}

func (s *failingStore) SavePost(ctx context.Context, p *models.Post) error {
	if s.fail {
		return errStorage
	}
	return s.MemoryStore.SavePost(ctx, p)
}

func assertUserCounts(t *testing.T, u *models.User) {
	t.Helper()
	require.Equal(t, len(u.Following), u.FollowingCount, "followingCount of %s", u.Username)
	require.Equal(t, len(u.Followers), u.FollowerCount, "followerCount of %s", u.Username)
}

func assertReactionCounts(t *testing.T, r models.Reactions) {
	t.Helper()
	require.Equal(t, len(r.Likes), r.LikeCount)
	require.Equal(t, len(r.Dislikes), r.DislikeCount)
	for _, h := range r.Likes {
		require.NotContains(t, r.Dislikes, h)
	}
}
