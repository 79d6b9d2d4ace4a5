package db

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

// MemoryStore keeps posts in process memory, in insertion order.
type MemoryStore struct {
	mu     sync.RWMutex
	posts  map[string]models.Post
	order  []string
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[string]models.Post)}
}

func (s *MemoryStore) ListPosts(_ context.Context, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	limit = max(limit, 0)
	posts := make([]models.Post, 0, min(limit, len(s.order)))
	for _, id := range s.order {
		if len(posts) >= limit {
			break
		}
		posts = append(posts, s.posts[id])
	}
	return posts, nil
}

func (s *MemoryStore) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	if err := validateUUID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (s *MemoryStore) CreatePost(_ context.Context, post models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	post.ID = uuid.NewString()
	s.posts[post.ID] = post
	s.order = append(s.order, post.ID)
	return &post, nil
}

func (s *MemoryStore) UpdatePost(_ context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	if err := validateUUID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	post = update.Apply(post)
	s.posts[id] = post
	return &post, nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id string) error {
	if err := validateUUID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.posts[id]; !ok {
		return nil
	}
	delete(s.posts, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) DropPosts(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.posts = make(map[string]models.Post)
	s.order = nil
	return nil
}

func (s *MemoryStore) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}

func validateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
