package social

import (
	"commonroom/apperr"
	"commonroom/monitoring"
	"commonroom/storage"
	"commonroom/storage/models"
	"context"
	"errors"
	log "github.com/sirupsen/logrus"
	"slices"
)

type FollowGraph struct {
	store storage.Store
}

func NewFollowGraph(store storage.Store) *FollowGraph {
	return &FollowGraph{store: store}
}

// Toggle follows target when actor doesn't follow it yet and unfollows it
// otherwise. Both users are saved one after the other, without a transaction.
func (g *FollowGraph) Toggle(ctx context.Context, actorID, targetID string) (*models.User, error) {
	actor, err := g.store.FindUserByID(ctx, actorID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	target, err := g.store.FindUserByID(ctx, targetID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("Cannot find that user.")
	}
	if err != nil {
		return nil, err
	}
	if actor.ID == target.ID || actor.Username == target.Username {
		return nil, apperr.DomainRule("Cannot follow yourself.")
	}

	action := "follow"
	if hasEdge(actor.Following, target.Username) {
		action = "unfollow"
		actor.Following = removeEdge(actor.Following, target.Username)
		target.Followers = removeEdge(target.Followers, actor.Username)
	} else {
		actor.Following = append(actor.Following, models.NewFollowEdge(target))
		target.Followers = append(target.Followers, models.NewFollowEdge(actor))
	}
	actor.FollowingCount = len(actor.Following)
	target.FollowerCount = len(target.Followers)

	if err = g.store.SaveUser(ctx, target); err != nil {
		log.Errorf("Error saving followed user '%s': %v", target.ID, err)
		return nil, err
	}
	if err = g.store.SaveUser(ctx, actor); err != nil {
		log.Errorf("Error saving follower '%s': %v", actor.ID, err)
		return nil, err
	}
	monitoring.FollowToggles.WithLabelValues(action).Inc()
	return actor, nil
}

func hasEdge(edges []models.FollowEdge, handle string) bool {
	return slices.ContainsFunc(edges, func(e models.FollowEdge) bool { return e.Username == handle })
}

func removeEdge(edges []models.FollowEdge, handle string) []models.FollowEdge {
	return slices.DeleteFunc(edges, func(e models.FollowEdge) bool { return e.Username == handle })
}
