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

// CreateComment puts the new comment first.
func (s *Service) CreateComment(ctx context.Context, actor auth.Identity, postID, body string) (*models.Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperr.FieldError("body", "Comment must not be empty.")
	}
	author, err := s.findUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		UserInfo:  author.Snapshot().AuthorInfo(),
		Body:      body,
		CreatedAt: s.now().UTC(),
		Reactions: models.Reactions{Likes: []string{}, Dislikes: []string{}},
	}
	post.Comments = append([]models.Comment{comment}, post.Comments...)
	post.CommentCount++

	if err = s.store.SavePost(ctx, post); err != nil {
		return nil, internal("create comment", err)
	}
	s.present(ctx, post)
	return post, nil
}

// DeleteComment is allowed to the comment author and to the post author.
func (s *Service) DeleteComment(ctx context.Context, actor auth.Identity, postID, commentID string) (*models.Post, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	idx := post.CommentIndex(commentID)
	if idx < 0 {
		return nil, apperr.NotFound("Comment does not exist.")
	}
	if !isAuthor(post.Comments[idx].UserInfo, actor) && !isAuthor(post.UserInfo, actor) {
		return nil, apperr.Auth("Cannot delete someone else's comment.")
	}

	post.Comments = append(post.Comments[:idx], post.Comments[idx+1:]...)
	if post.CommentCount > 0 {
		post.CommentCount--
	}
	if err = s.store.SavePost(ctx, post); err != nil {
		return nil, internal("delete comment", err)
	}
	s.present(ctx, post)
	return post, nil
}

// LikeComment toggles a like on a comment. Reacting to your own comment is allowed.
func (s *Service) LikeComment(ctx context.Context, actor auth.Identity, postID, commentID string) (*models.Post, error) {
	return s.reactToComment(ctx, actor, postID, commentID, social.Like)
}

func (s *Service) DislikeComment(ctx context.Context, actor auth.Identity, postID, commentID string) (*models.Post, error) {
	return s.reactToComment(ctx, actor, postID, commentID, social.Dislike)
}

func (s *Service) reactToComment(ctx context.Context, actor auth.Identity, postID, commentID string, kind social.ReactionKind) (*models.Post, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	idx := post.CommentIndex(commentID)
	if idx < 0 {
		return nil, apperr.NotFound("Comment does not exist.")
	}

	outcome := social.ApplyReaction(&post.Comments[idx].Reactions, actor.Username, kind)
	if err = s.store.SavePost(ctx, post); err != nil {
		return nil, internal("react to comment", err)
	}
	monitoring.Reactions.WithLabelValues("comment", outcome.String()).Inc()
	s.present(ctx, post)
	return post, nil
}
