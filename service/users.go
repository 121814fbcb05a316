package service

import (
	"commonroom/apperr"
	"commonroom/auth"
	"commonroom/storage"
	"commonroom/storage/models"
	"commonroom/validation"
	"context"
	"errors"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ProfileInput struct {
	HouseName       string `json:"houseName"`
	Location        string `json:"location"`
	Bio             string `json:"bio"`
	ProfileImageURL string `json:"profileImageURL"`
	BannerURL       string `json:"bannerURL"`
}

func (s *Service) Register(ctx context.Context, in validation.RegisterInput) (*AuthResult, error) {
	if result := s.validator.Registration(in); !result.Valid() {
		return nil, apperr.Validation("Errors", result)
	}

	_, err := s.store.FindUserByHandle(ctx, in.Username)
	if err == nil {
		return nil, usernameTaken()
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, internal("register", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internal("register", err)
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Username:  in.Username,
		Password:  hash,
		Email:     in.Email,
		HouseName: in.HouseName,
		CreatedAt: s.now().UTC(),
		Following: []models.FollowEdge{},
		Followers: []models.FollowEdge{},
	}
	err = s.store.SaveUser(ctx, user)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, usernameTaken()
	}
	if err != nil {
		return nil, internal("register", err)
	}
	s.directory.Remember(ctx, user)
	log.Infof("Registered user '%s'", user.Username)

	return s.authResult(user)
}

func usernameTaken() error {
	return apperr.FieldError("username", "Username is taken")
}

func (s *Service) Login(ctx context.Context, in validation.LoginInput) (*AuthResult, error) {
	if result := s.validator.Login(in); !result.Valid() {
		return nil, apperr.Validation("Errors", result)
	}

	user, err := s.store.FindUserByHandle(ctx, in.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.FieldError("username", "User does not exist")
	}
	if err != nil {
		return nil, internal("login", err)
	}

	ok, err := s.hasher.Compare(user.Password, in.Password)
	if err != nil {
		return nil, internal("login", err)
	}
	if !ok {
		return nil, apperr.FieldError("password", "Username or password is incorrect")
	}

	if user, err = s.reconciler.ReconcileFollowLists(ctx, user); err != nil {
		return nil, internal("login", err)
	}
	return s.authResult(user)
}

func (s *Service) authResult(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, internal("issue token", err)
	}
	return &AuthResult{User: public(user), Token: token}, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user, err = s.reconciler.ReconcileFollowLists(ctx, user); err != nil {
		return nil, internal("get user", err)
	}
	return public(user), nil
}

func (s *Service) GetUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.store.FindUsers(ctx, storage.UserQuery{Order: storage.NewestFirst})
	if err != nil {
		return nil, internal("get users", err)
	}
	for i, user := range users {
		users[i] = public(user)
	}
	return users, nil
}

func (s *Service) FollowClicked(ctx context.Context, actor auth.Identity, targetID string) (*models.User, error) {
	user, err := s.graph.Toggle(ctx, actor.ID, targetID)
	if err != nil {
		return nil, internal("follow", err)
	}
	return public(user), nil
}

func (s *Service) DeleteUser(ctx context.Context, actor auth.Identity) (string, error) {
	msg, err := s.cascade.DeleteUser(ctx, actor.ID)
	if err != nil {
		return "", internal("delete user", err)
	}
	return msg, nil
}

// UpdateProfileDetails overwrites the non-empty fields of in. Snapshots
// embedded elsewhere catch up on their next reconciliation.
func (s *Service) UpdateProfileDetails(ctx context.Context, actor auth.Identity, in ProfileInput) (*models.User, error) {
	user, err := s.findUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	for _, field := range []struct {
		value  string
		target *string
	}{
		{in.HouseName, &user.HouseName},
		{in.Location, &user.Location},
		{in.Bio, &user.Bio},
		{in.ProfileImageURL, &user.ProfileImageURL},
		{in.BannerURL, &user.BannerURL},
	} {
		if field.value != "" {
			*field.target = field.value
		}
	}

	if err = s.store.SaveUser(ctx, user); err != nil {
		return nil, internal("update profile", err)
	}
	s.directory.Remember(ctx, user)
	return public(user), nil
}
