package storage

import (
	"commonroom/storage/models"
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// ErrDuplicate is returned by SaveUser when another user already holds the
// username.
var ErrDuplicate = errors.New("duplicate username")

type Order int

const (
	// InsertionOrder returns documents in the order they were first stored.
	InsertionOrder Order = iota
	// NewestFirst sorts by createdAt, descending.
	NewestFirst
)

// UserQuery selects users. The zero value matches every user.
type UserQuery struct {
	// EdgeHandle matches users whose following or followers list contains the handle.
	EdgeHandle string
	Order      Order
}

// PostQuery selects posts. Non-empty fields are combined with AND.
type PostQuery struct {
	AuthorID      string
	AuthorHandles []string
	LikedBy       string
	// Participant matches posts the handle liked, disliked or commented on.
	Participant string
	Order       Order
}

// Store is the document persistence used by the social engine. Save upserts
// the whole document; no operation spans more than one document.
type Store interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByHandle(ctx context.Context, handle string) (*models.User, error)
	FindUsers(ctx context.Context, query UserQuery) ([]*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error

	FindPostByID(ctx context.Context, id string) (*models.Post, error)
	FindPosts(ctx context.Context, query PostQuery) ([]*models.Post, error)
	SavePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	DeletePosts(ctx context.Context, query PostQuery) (int64, error)

	Close(ctx context.Context) error
}
