package service

import (
	"commonroom/apperr"
	"commonroom/auth"
	"commonroom/media"
	"commonroom/social"
	"commonroom/storage"
	"commonroom/storage/cache"
	"commonroom/storage/models"
	"commonroom/validation"
	"context"
	"errors"
	log "github.com/sirupsen/logrus"
	"time"
)

type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenIssuer interface {
	Issue(identity auth.Identity) (string, error)
}

type Validator interface {
	Registration(in validation.RegisterInput) validation.Result
	Login(in validation.LoginInput) validation.Result
}

type MediaSigner interface {
	PresignUpload(ctx context.Context, userID string) (*media.Upload, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

type Deps struct {
	Store     storage.Store
	Cache     cache.IdentityCache
	Hasher    Hasher
	Tokens    TokenIssuer
	Validator Validator
	// Media is optional; without it RequestMediaUpload fails.
	Media MediaSigner
}

// Service exposes the API operations. Every method returns either the
// updated aggregate or a confirmation message, and an *apperr.Error on failure.
type Service struct {
	store      storage.Store
	directory  *social.Directory
	reconciler *social.Reconciler
	graph      *social.FollowGraph
	cascade    *social.Cascade
	timeline   *social.Timeline

	hasher    Hasher
	tokens    TokenIssuer
	validator Validator
	media     MediaSigner

	now func() time.Time
}

func New(deps Deps) *Service {
	directory := social.NewDirectory(deps.Store, deps.Cache)
	return &Service{
		store:      deps.Store,
		directory:  directory,
		reconciler: social.NewReconciler(deps.Store, directory),
		graph:      social.NewFollowGraph(deps.Store),
		cascade:    social.NewCascade(deps.Store, directory),
		timeline:   social.NewTimeline(deps.Store, directory),
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		validator:  deps.Validator,
		media:      deps.Media,
		now:        time.Now,
	}
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Service) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, internal("find user", err)
	}
	return user, nil
}

func (s *Service) findPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.store.FindPostByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, internal("find post", err)
	}
	return post, nil
}

// internal passes typed errors through and wraps everything else.
func internal(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	log.Errorf("Error in %s: %v", op, err)
	return apperr.Internal("Internal server error", err)
}

func identityOf(user *models.User) auth.Identity {
	return auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name, Username: user.Username}
}

// public strips the credentials before a user leaves the service.
func public(user *models.User) *models.User {
	c := user.Clone()
	c.Password = ""
	return c
}
