package service

import (
	"commonroom/apperr"
	"commonroom/auth"
	"commonroom/monitoring"
	"commonroom/social"
	"commonroom/storage/models"
	"context"
	"github.com/google/uuid"
	"strings"
)

const PostDeletedMessage = "Post deleted successfully"

type PostInput struct {
	Body     string `json:"body"`
	ImageURL string `json:"imageURL"`
}

func (s *Service) CreatePost(ctx context.Context, actor auth.Identity, in PostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, apperr.FieldError("body", "Post must not be empty")
	}
	author, err := s.findUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        uuid.NewString(),
		UserInfo:  author.Snapshot().AuthorInfo(),
		Body:      in.Body,
		ImageURL:  in.ImageURL,
		CreatedAt: s.now().UTC(),
		Comments:  []models.Comment{},
		Reactions: models.Reactions{Likes: []string{}, Dislikes: []string{}},
	}
	if err = s.store.SavePost(ctx, post); err != nil {
		return nil, internal("create post", err)
	}
	s.present(ctx, post)
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, actor auth.Identity, postID string) (string, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return "", err
	}
	if !isAuthor(post.UserInfo, actor) {
		return "", apperr.Auth("Action is not allowed")
	}
	if err = s.store.DeletePost(ctx, post.ID); err != nil {
		return "", internal("delete post", err)
	}
	return PostDeletedMessage, nil
}

func (s *Service) LikePost(ctx context.Context, actor auth.Identity, postID string) (*models.Post, error) {
	return s.reactToPost(ctx, actor, postID, social.Like)
}

func (s *Service) DislikePost(ctx context.Context, actor auth.Identity, postID string) (*models.Post, error) {
	return s.reactToPost(ctx, actor, postID, social.Dislike)
}

func (s *Service) reactToPost(ctx context.Context, actor auth.Identity, postID string, kind social.ReactionKind) (*models.Post, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if isAuthor(post.UserInfo, actor) {
		return nil, apperr.DomainRule("Cannot " + kind.String() + " your own post")
	}

	outcome := social.ApplyReaction(&post.Reactions, actor.Username, kind)
	if err = s.store.SavePost(ctx, post); err != nil {
		return nil, internal("react to post", err)
	}
	monitoring.Reactions.WithLabelValues("post", outcome.String()).Inc()
	s.present(ctx, post)
	return post, nil
}

func (s *Service) GetPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.timeline.ListPosts(ctx)
	if err != nil {
		return nil, internal("get posts", err)
	}
	s.present(ctx, posts...)
	return posts, nil
}

// GetPost returns the post after dropping the comments and votes of deleted
// users and refreshing comment author snapshots.
func (s *Service) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post, err = s.reconciler.ReconcilePostMembership(ctx, post); err != nil {
		return nil, internal("get post", err)
	}
	s.present(ctx, post)
	return post, nil
}

func (s *Service) GetFollowingPosts(ctx context.Context, actor auth.Identity) ([]*models.Post, error) {
	user, err := s.findUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	posts, err := s.timeline.FollowingPosts(ctx, user)
	if err != nil {
		return nil, internal("get following posts", err)
	}
	s.present(ctx, posts...)
	return posts, nil
}

func (s *Service) GetUserPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	posts, err := s.timeline.UserPosts(ctx, userID)
	if err != nil {
		return nil, internal("get user posts", err)
	}
	s.present(ctx, posts...)
	return posts, nil
}

func (s *Service) GetUserLikedPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.timeline.LikedPosts(ctx, user.Username)
	if err != nil {
		return nil, internal("get liked posts", err)
	}
	s.present(ctx, posts...)
	return posts, nil
}

func isAuthor(snapshot models.IdentitySnapshot, actor auth.Identity) bool {
	if snapshot.UserID != "" {
		return snapshot.UserID == actor.ID
	}
	return snapshot.Username == actor.Username
}
