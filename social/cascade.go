package social

import (
	"commonroom/apperr"
	"commonroom/monitoring"
	"commonroom/storage"
	"commonroom/storage/models"
	"context"
	"errors"
	log "github.com/sirupsen/logrus"
)

const UserDeletedMessage = "User successfully deleted."

// Cascade removes a user together with every reference other documents hold
// to them.
type Cascade struct {
	store     storage.Store
	directory *Directory
}

func NewCascade(store storage.Store, directory *Directory) *Cascade {
	return &Cascade{store: store, directory: directory}
}

// DeleteUser runs the deletion steps in order and stops at the first storage
// failure. Every step can be replayed: running DeleteUser again after a
// partial failure finishes the job.
//
// Comments written by the user stay on other posts, only the counter is
// adjusted; the next ReconcilePostMembership of the post drops them.
func (c *Cascade) DeleteUser(ctx context.Context, userID string) (string, error) {
	user, err := c.store.FindUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", apperr.NotFound("User not found")
	}
	if err != nil {
		return "", err
	}
	handle := user.Username

	// Authored posts
	deleted, err := c.store.DeletePosts(ctx, storage.PostQuery{AuthorID: user.ID})
	if err != nil {
		log.Errorf("Error deleting user posts: %v", err)
		return "", err
	}
	monitoring.CascadeDeletes.WithLabelValues("post").Add(float64(deleted))

	// Votes and comments on remaining posts
	posts, err := c.store.FindPosts(ctx, storage.PostQuery{Participant: handle})
	if err != nil {
		log.Errorf("Error finding posts touched by user: %v", err)
		return "", err
	}
	for _, post := range posts {
		detachFromPost(post, user)
		if err = c.store.SavePost(ctx, post); err != nil {
			log.Errorf("Error detaching user from post '%s': %v", post.ID, err)
			return "", err
		}
	}
	monitoring.CascadeDeletes.WithLabelValues("post_reference").Add(float64(len(posts)))

	// Follow edges held by other users
	users, err := c.store.FindUsers(ctx, storage.UserQuery{EdgeHandle: handle})
	if err != nil {
		log.Errorf("Error finding related users: %v", err)
		return "", err
	}
	touched := 0
	for _, other := range users {
		if other.ID == user.ID {
			continue
		}
		other.Following = removeEdge(other.Following, handle)
		other.Followers = removeEdge(other.Followers, handle)
		other.FollowingCount = len(other.Following)
		other.FollowerCount = len(other.Followers)
		if err = c.store.SaveUser(ctx, other); err != nil {
			log.Errorf("Error removing follow edges from user '%s': %v", other.ID, err)
			return "", err
		}
		touched++
	}
	monitoring.CascadeDeletes.WithLabelValues("user_reference").Add(float64(touched))

	// The user itself
	if err = c.store.DeleteUser(ctx, user.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Errorf("Error deleting user: %v", err)
		return "", err
	}
	if c.directory != nil {
		c.directory.Forget(ctx, user.Snapshot())
	}
	monitoring.CascadeDeletes.WithLabelValues("user").Inc()

	log.Infof("Deleted user '%s' (%d posts)", handle, deleted)
	return UserDeletedMessage, nil
}

// detachFromPost removes the user's votes from the post and sets commentCount
// as if their comments were already gone. Applying it twice gives the same
// post.
func detachFromPost(post *models.Post, user *models.User) {
	post.Likes = removeHandle(post.Likes, user.Username)
	post.Dislikes = removeHandle(post.Dislikes, user.Username)
	recount(&post.Reactions)

	authored := 0
	for _, comment := range post.Comments {
		if comment.UserInfo.UserID == user.ID || comment.UserInfo.Username == user.Username {
			authored++
		}
	}
	post.CommentCount = len(post.Comments) - authored
}
