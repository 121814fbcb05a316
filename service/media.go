package service

import (
	"commonroom/apperr"
	"commonroom/auth"
	"commonroom/media"
	"commonroom/storage/models"
	"context"
	"errors"
	log "github.com/sirupsen/logrus"
)

var ErrMediaDisabled = errors.New("media storage is not configured")

// RequestMediaUpload hands out a presigned URL for a post image.
func (s *Service) RequestMediaUpload(ctx context.Context, actor auth.Identity) (*media.Upload, error) {
	if s.media == nil {
		return nil, apperr.Internal("Media uploads are not available", ErrMediaDisabled)
	}
	if _, err := s.findUser(ctx, actor.ID); err != nil {
		return nil, err
	}
	upload, err := s.media.PresignUpload(ctx, actor.ID)
	if err != nil {
		return nil, internal("request media upload", err)
	}
	return upload, nil
}

// present swaps stored image keys for presigned download URLs on posts about
// to leave the service. The posts must not be saved afterwards.
func (s *Service) present(ctx context.Context, posts ...*models.Post) {
	if s.media == nil {
		return
	}
	for _, post := range posts {
		if !media.IsStorageKey(post.ImageURL) {
			continue
		}
		url, err := s.media.PresignDownload(ctx, post.ImageURL)
		if err != nil {
			log.Warningf("Error presigning image of post '%s': %v", post.ID, err)
			continue
		}
		post.ImageURL = url
	}
}
