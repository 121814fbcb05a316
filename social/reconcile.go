// Package social keeps the denormalized parts of users and posts consistent:
// reaction sets, follow edges, embedded identity snapshots and counters.
package social

import (
	"commonroom/monitoring"
	"commonroom/storage"
	"commonroom/storage/models"
	"context"
	"fmt"
	log "github.com/sirupsen/logrus"
)

// RepairUser drops follow edges pointing to users that no longer exist,
// refreshes the remaining snapshots and recomputes the counters. It reports
// whether anything changed. Repairing twice is the same as repairing once.
func RepairUser(ctx context.Context, user *models.User, lookup Lookup) (bool, error) {
	lookup = memoize(lookup)

	following, followingChanged, err := repairEdges(ctx, user.Following, lookup)
	if err != nil {
		return false, err
	}
	followers, followersChanged, err := repairEdges(ctx, user.Followers, lookup)
	if err != nil {
		return false, err
	}

	changed := followingChanged || followersChanged
	user.Following = following
	user.Followers = followers
	if user.FollowingCount != len(following) || user.FollowerCount != len(followers) {
		user.FollowingCount = len(following)
		user.FollowerCount = len(followers)
		changed = true
	}
	return changed, nil
}

func repairEdges(ctx context.Context, edges []models.FollowEdge, lookup Lookup) ([]models.FollowEdge, bool, error) {
	repaired := make([]models.FollowEdge, 0, len(edges))
	changed := false
	for _, edge := range edges {
		live, ok, err := resolveAuthor(ctx, lookup, edge.IdentitySnapshot)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			log.Debugf("Dropping follow edge to deleted user '%s'", edge.Username)
			changed = true
			continue
		}
		if live != edge.IdentitySnapshot {
			changed = true
		}
		repaired = append(repaired, models.FollowEdge{IdentitySnapshot: live})
	}
	return repaired, changed, nil
}

// RepairPost drops comments and votes of users that no longer exist, refreshes
// the author snapshots of the post and its comments, and recomputes every
// counter. It reports whether anything changed.
func RepairPost(ctx context.Context, post *models.Post, lookup Lookup) (bool, error) {
	lookup = memoize(lookup)

	author, ok, err := resolveAuthor(ctx, lookup, post.UserInfo)
	if err != nil {
		return false, err
	}
	changed := false
	if ok && author.AuthorInfo() != post.UserInfo {
		post.UserInfo = author.AuthorInfo()
		changed = true
	}

	votesChanged, err := repairVotes(ctx, &post.Reactions, lookup)
	if err != nil {
		return false, err
	}
	changed = changed || votesChanged

	comments := make([]models.Comment, 0, len(post.Comments))
	for _, comment := range post.Comments {
		live, ok, err := resolveAuthor(ctx, lookup, comment.UserInfo)
		if err != nil {
			return false, err
		}
		if !ok {
			log.Debugf("Dropping comment '%s' of deleted user '%s'", comment.ID, comment.UserInfo.Username)
			changed = true
			continue
		}
		if live.AuthorInfo() != comment.UserInfo {
			comment.UserInfo = live.AuthorInfo()
			changed = true
		}
		votesChanged, err = repairVotes(ctx, &comment.Reactions, lookup)
		if err != nil {
			return false, err
		}
		changed = changed || votesChanged
		comments = append(comments, comment)
	}
	post.Comments = comments

	if post.CommentCount != len(comments) {
		post.CommentCount = len(comments)
		changed = true
	}
	return changed, nil
}

func repairVotes(ctx context.Context, r *models.Reactions, lookup Lookup) (bool, error) {
	changed := false
	for _, set := range []*[]string{&r.Likes, &r.Dislikes} {
		kept := (*set)[:0]
		for _, handle := range *set {
			_, ok, err := lookup.UserByHandle(ctx, handle)
			if err != nil {
				return false, err
			}
			if !ok {
				changed = true
				continue
			}
			kept = append(kept, handle)
		}
		*set = kept
	}
	return recount(r) || changed, nil
}

// Reconciler runs the repair passes on read and persists what changed.
type Reconciler struct {
	store  storage.Store
	lookup Lookup
}

func NewReconciler(store storage.Store, lookup Lookup) *Reconciler {
	return &Reconciler{store: store, lookup: lookup}
}

func (r *Reconciler) ReconcileFollowLists(ctx context.Context, user *models.User) (*models.User, error) {
	changed, err := RepairUser(ctx, user, r.lookup)
	if err != nil {
		return nil, fmt.Errorf("repair user %s: %w", user.ID, err)
	}
	if !changed {
		return user, nil
	}

	if err = r.store.SaveUser(ctx, user); err != nil {
		log.Errorf("Error saving reconciled user '%s': %v", user.ID, err)
		return nil, err
	}
	monitoring.ReconciliationRepairs.WithLabelValues("user").Inc()
	return user, nil
}

func (r *Reconciler) ReconcilePostMembership(ctx context.Context, post *models.Post) (*models.Post, error) {
	changed, err := RepairPost(ctx, post, r.lookup)
	if err != nil {
		return nil, fmt.Errorf("repair post %s: %w", post.ID, err)
	}
	if !changed {
		return post, nil
	}

	if err = r.store.SavePost(ctx, post); err != nil {
		log.Errorf("Error saving reconciled post '%s': %v", post.ID, err)
		return nil, err
	}
	monitoring.ReconciliationRepairs.WithLabelValues("post").Inc()
	return post, nil
}
