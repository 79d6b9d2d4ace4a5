package db

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

// Author is stored as a JSONB document so the row keeps the same shape as
// the MongoDB backend.
const postsTableSQL = `CREATE TABLE IF NOT EXISTS posts (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    author JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type PostgresStore struct {
	pool   *pgxpool.Pool
	closed atomic.Bool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, postsTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create posts table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close(_ context.Context) error {
	if s.closed.Swap(true) {
		return ErrClosed
	}
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	limit = max(limit, 0)
	const query = `
		SELECT id::text, title, content, author
		FROM posts
		ORDER BY created_at, id
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0, limit)
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.Author); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := validateUUID(id); err != nil {
		return nil, err
	}
	const query = `
		SELECT id::text, title, content, author
		FROM posts
		WHERE id = $1
	`
	var post models.Post
	err := s.pool.QueryRow(ctx, query, id).Scan(&post.ID, &post.Title, &post.Content, &post.Author)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

func (s *PostgresStore) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	const query = `
		INSERT INTO posts (title, content, author)
		VALUES ($1, $2, $3)
		RETURNING id::text, title, content, author
	`
	var created models.Post
	err := s.pool.QueryRow(ctx, query, post.Title, post.Content, post.Author).Scan(
		&created.ID,
		&created.Title,
		&created.Content,
		&created.Author,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) UpdatePost(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := validateUUID(id); err != nil {
		return nil, err
	}

	// NULL parameters keep the current column value.
	const query = `
		UPDATE posts SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			author = COALESCE($4, author)
		WHERE id = $1
		RETURNING id::text, title, content, author
	`
	var updated models.Post
	err := s.pool.QueryRow(ctx, query, id, update.Title, update.Content, update.Author).Scan(
		&updated.ID,
		&updated.Title,
		&updated.Content,
		&updated.Author,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, id string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := validateUUID(id); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *PostgresStore) DropPosts(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := s.pool.Exec(ctx, `TRUNCATE posts`); err != nil {
		return fmt.Errorf("drop posts: %w", err)
	}
	return nil
}
