package social

import (
	"commonroom/apperr"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowGraph_ToggleScenario(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	g := NewFollowGraph(f.store)

	actor, err := g.Toggle(f.ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, actor.FollowingCount)
	require.Len(t, actor.Following, 1)
	assert.Equal(t, b.Snapshot(), actor.Following[0].IdentitySnapshot)

	target := f.reloadUser(t, b.ID)
	assert.Equal(t, 1, target.FollowerCount)
	require.Len(t, target.Followers, 1)
	assert.Equal(t, "alice", target.Followers[0].Username)
	assert.Equal(t, actor, f.reloadUser(t, a.ID))

	actor, err = g.Toggle(f.ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, actor.FollowingCount)
	assert.Empty(t, actor.Following)

	target = f.reloadUser(t, b.ID)
	assert.Equal(t, 0, target.FollowerCount)
	assert.Empty(t, target.Followers)
}

func TestFollowGraph_MutualFollowKeepsCounts(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	c := f.user(t, "carol")
	g := NewFollowGraph(f.store)

	for _, pair := range [][2]string{{a.ID, b.ID}, {b.ID, a.ID}, {c.ID, a.ID}, {a.ID, c.ID}, {c.ID, a.ID}} {
		_, err := g.Toggle(f.ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	for _, id := range []string{a.ID, b.ID, c.ID} {
		assertUserCounts(t, f.reloadUser(t, id))
	}
	alice := f.reloadUser(t, a.ID)
	assert.Equal(t, 2, alice.FollowingCount)
	assert.Equal(t, 1, alice.FollowerCount)
}

func TestFollowGraph_Rejections(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice")
	g := NewFollowGraph(f.store)

	_, err := g.Toggle(f.ctx, a.ID, a.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindDomainRule, apperr.KindOf(err))

	_, err = g.Toggle(f.ctx, a.ID, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	assert.Equal(t, 0, f.reloadUser(t, a.ID).FollowingCount)
}

func TestFollowGraph_StorageFailure(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	store := &failingStore{MemoryStore: f.store, fail: true}

	_, err := NewFollowGraph(store).Toggle(f.ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, errStorage)
}
