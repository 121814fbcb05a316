package social

import (
	"commonroom/storage"
	"commonroom/storage/models"
	"context"
	log "github.com/sirupsen/logrus"
	"slices"
)

// Timeline assembles post listings.
type Timeline struct {
	store  storage.Store
	lookup Lookup
}

func NewTimeline(store storage.Store, lookup Lookup) *Timeline {
	return &Timeline{store: store, lookup: lookup}
}

// ListPosts returns every post newest first, with the author snapshot
// refreshed from the live user record. Refreshed posts are saved.
func (t *Timeline) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := t.store.FindPosts(ctx, storage.PostQuery{Order: storage.NewestFirst})
	if err != nil {
		return nil, err
	}

	lookup := memoize(t.lookup)
	for _, post := range posts {
		live, ok, err := resolveAuthor(ctx, lookup, post.UserInfo)
		if err != nil {
			return nil, err
		}
		if !ok || live.AuthorInfo() == post.UserInfo {
			continue
		}
		post.UserInfo = live.AuthorInfo()
		if err = t.store.SavePost(ctx, post); err != nil {
			log.Errorf("Error refreshing author of post '%s': %v", post.ID, err)
			return nil, err
		}
	}
	return posts, nil
}

// FollowingPosts returns the posts of everyone user follows plus their own,
// latest stored first.
func (t *Timeline) FollowingPosts(ctx context.Context, user *models.User) ([]*models.Post, error) {
	handles := make([]string, 0, len(user.Following)+1)
	for _, edge := range user.Following {
		handles = append(handles, edge.Username)
	}
	handles = append(handles, user.Username)

	return t.reversed(ctx, storage.PostQuery{AuthorHandles: handles})
}

func (t *Timeline) UserPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	return t.reversed(ctx, storage.PostQuery{AuthorID: userID})
}

func (t *Timeline) LikedPosts(ctx context.Context, handle string) ([]*models.Post, error) {
	return t.reversed(ctx, storage.PostQuery{LikedBy: handle})
}

func (t *Timeline) reversed(ctx context.Context, query storage.PostQuery) ([]*models.Post, error) {
	posts, err := t.store.FindPosts(ctx, query)
	if err != nil {
		return nil, err
	}
	slices.Reverse(posts)
	return posts, nil
}
