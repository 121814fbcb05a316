package storage

import (
	"commonroom/storage/models"
	"context"
	"slices"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process. Returned documents are copies, so
// callers mutate them freely and persist through Save like with the other drivers.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	userSeq []string
	posts   map[string]*models.Post
	postSeq []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
		posts: make(map[string]*models.Post),
	}
}

func (s *MemoryStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return user.Clone(), nil
}

func (s *MemoryStore) FindUserByHandle(_ context.Context, handle string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userSeq {
		if s.users[id].Username == handle {
			return s.users[id].Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindUsers(_ context.Context, query UserQuery) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.User, 0)
	for _, id := range s.userSeq {
		user := s.users[id]
		if query.EdgeHandle != "" && !hasEdge(user.Following, query.EdgeHandle) && !hasEdge(user.Followers, query.EdgeHandle) {
			continue
		}
		result = append(result, user.Clone())
	}
	if query.Order == NewestFirst {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}
	return result, nil
}

func (s *MemoryStore) SaveUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, other := range s.users {
		if id != user.ID && other.Username == user.Username {
			return ErrDuplicate
		}
	}
	if _, ok := s.users[user.ID]; !ok {
		s.userSeq = append(s.userSeq, user.ID)
	}
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	s.userSeq = slices.DeleteFunc(s.userSeq, func(v string) bool { return v == id })
	return nil
}

func (s *MemoryStore) FindPostByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return post.Clone(), nil
}

func (s *MemoryStore) FindPosts(_ context.Context, query PostQuery) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Post, 0)
	for _, id := range s.postSeq {
		if post := s.posts[id]; matchPost(post, query) {
			result = append(result, post.Clone())
		}
	}
	if query.Order == NewestFirst {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}
	return result, nil
}

func (s *MemoryStore) SavePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.ID]; !ok {
		s.postSeq = append(s.postSeq, post.ID)
	}
	s.posts[post.ID] = post.Clone()
	return nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	s.postSeq = slices.DeleteFunc(s.postSeq, func(v string) bool { return v == id })
	return nil
}

func (s *MemoryStore) DeletePosts(_ context.Context, query PostQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	s.postSeq = slices.DeleteFunc(s.postSeq, func(id string) bool {
		if !matchPost(s.posts[id], query) {
			return false
		}
		delete(s.posts, id)
		deleted++
		return true
	})
	return deleted, nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

func hasEdge(edges []models.FollowEdge, handle string) bool {
	return slices.ContainsFunc(edges, func(e models.FollowEdge) bool { return e.Username == handle })
}

func matchPost(post *models.Post, query PostQuery) bool {
	if query.AuthorID != "" && post.UserInfo.UserID != query.AuthorID {
		return false
	}
	if len(query.AuthorHandles) > 0 && !slices.Contains(query.AuthorHandles, post.UserInfo.Username) {
		return false
	}
	if query.LikedBy != "" && !slices.Contains(post.Likes, query.LikedBy) {
		return false
	}
	if h := query.Participant; h != "" {
		commented := slices.ContainsFunc(post.Comments, func(c models.Comment) bool { return c.UserInfo.Username == h })
		if !commented && !slices.Contains(post.Likes, h) && !slices.Contains(post.Dislikes, h) {
			return false
		}
	}
	return true
}
