package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrInvalidID = errors.New("invalid post id")
	ErrClosed    = errors.New("store closed")
)

// Store is the data-access layer for posts.
type Store interface {
	ListPosts(ctx context.Context, limit int) ([]models.Post, error)
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error)
	// DeletePost succeeds for a well-formed id that does not exist.
	DeletePost(ctx context.Context, id string) error
	// DropPosts removes every post.
	DropPosts(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the backend named by the URL scheme and verifies the
// connection before returning.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return NewMongoStore(ctx, databaseURL)
	case "postgres", "postgresql":
		return NewPostgresStore(ctx, databaseURL)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}
