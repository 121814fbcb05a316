package social

import (
	"commonroom/storage"
	"commonroom/storage/cache"
	"commonroom/storage/models"
	"context"
	"errors"
)

// Lookup resolves live identities. A missing user is reported with ok=false
// and a nil error; errors are reserved for storage failures.
type Lookup interface {
	UserByID(ctx context.Context, id string) (snapshot models.IdentitySnapshot, ok bool, err error)
	UserByHandle(ctx context.Context, handle string) (snapshot models.IdentitySnapshot, ok bool, err error)
}

// Directory is the Lookup backed by the store, with the identity cache in front.
type Directory struct {
	store storage.Store
	cache cache.IdentityCache
}

func NewDirectory(store storage.Store, identityCache cache.IdentityCache) *Directory {
	if identityCache == nil {
		identityCache = cache.NopIdentityCache{}
	}
	return &Directory{store: store, cache: identityCache}
}

func (d *Directory) UserByID(ctx context.Context, id string) (models.IdentitySnapshot, bool, error) {
	if snapshot, ok := d.cache.Get(ctx, id); ok {
		return snapshot, true, nil
	}
	user, err := d.store.FindUserByID(ctx, id)
	return d.resolve(ctx, user, err)
}

func (d *Directory) UserByHandle(ctx context.Context, handle string) (models.IdentitySnapshot, bool, error) {
	if snapshot, ok := d.cache.GetByHandle(ctx, handle); ok {
		return snapshot, true, nil
	}
	user, err := d.store.FindUserByHandle(ctx, handle)
	return d.resolve(ctx, user, err)
}

func (d *Directory) resolve(ctx context.Context, user *models.User, err error) (models.IdentitySnapshot, bool, error) {
	if errors.Is(err, storage.ErrNotFound) {
		return models.IdentitySnapshot{}, false, nil
	}
	if err != nil {
		return models.IdentitySnapshot{}, false, err
	}
	snapshot := user.Snapshot()
	d.cache.Put(ctx, snapshot)
	return snapshot, true, nil
}

// Remember caches the current identity of user, typically after a profile change.
func (d *Directory) Remember(ctx context.Context, user *models.User) {
	d.cache.Put(ctx, user.Snapshot())
}

func (d *Directory) Forget(ctx context.Context, snapshot models.IdentitySnapshot) {
	d.cache.Invalidate(ctx, snapshot)
}

// memoLookup answers repeated questions within one repair pass from memory.
type memoLookup struct {
	next     Lookup
	byID     map[string]lookupResult
	byHandle map[string]lookupResult
}

type lookupResult struct {
	snapshot models.IdentitySnapshot
	ok       bool
}

func memoize(next Lookup) *memoLookup {
	if m, ok := next.(*memoLookup); ok {
		return m
	}
	return &memoLookup{
		next:     next,
		byID:     make(map[string]lookupResult),
		byHandle: make(map[string]lookupResult),
	}
}

func (m *memoLookup) UserByID(ctx context.Context, id string) (models.IdentitySnapshot, bool, error) {
	if r, ok := m.byID[id]; ok {
		return r.snapshot, r.ok, nil
	}
	snapshot, ok, err := m.next.UserByID(ctx, id)
	if err != nil {
		return snapshot, false, err
	}
	m.store(id, snapshot.Username, snapshot, ok)
	return snapshot, ok, nil
}

func (m *memoLookup) UserByHandle(ctx context.Context, handle string) (models.IdentitySnapshot, bool, error) {
	if r, ok := m.byHandle[handle]; ok {
		return r.snapshot, r.ok, nil
	}
	snapshot, ok, err := m.next.UserByHandle(ctx, handle)
	if err != nil {
		return snapshot, false, err
	}
	m.store(snapshot.UserID, handle, snapshot, ok)
	return snapshot, ok, nil
}

func (m *memoLookup) store(id, handle string, snapshot models.IdentitySnapshot, ok bool) {
	r := lookupResult{snapshot: snapshot, ok: ok}
	if ok {
		m.byID[snapshot.UserID] = r
		m.byHandle[snapshot.Username] = r
		return
	}
	if id != "" {
		m.byID[id] = r
	}
	if handle != "" {
		m.byHandle[handle] = r
	}
}

// resolveAuthor finds the live identity behind an embedded snapshot, by id
// when it has one and by handle otherwise.
func resolveAuthor(ctx context.Context, lookup Lookup, snapshot models.IdentitySnapshot) (models.IdentitySnapshot, bool, error) {
	if snapshot.UserID != "" {
		return lookup.UserByID(ctx, snapshot.UserID)
	}
	return lookup.UserByHandle(ctx, snapshot.Username)
}
