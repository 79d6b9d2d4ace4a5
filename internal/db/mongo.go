package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

const (
	defaultMongoDatabase = "blog-app"
	postsCollection      = "posts"
)

// postDocument is the stored shape of a post in MongoDB.
type postDocument struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Title   string             `bson:"title"`
	Content string             `bson:"content"`
	Author  models.Author      `bson:"author"`
}

func (d postDocument) post() models.Post {
	return models.Post{
		ID:      d.ID.Hex(),
		Title:   d.Title,
		Content: d.Content,
		Author:  d.Author,
	}
}

type MongoStore struct {
	client *mongo.Client
	posts  *mongo.Collection
}

// NewMongoStore connects to the URI and pings the primary. The database name
// comes from the URI path, defaulting to blog-app.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongodb uri: %w", err)
	}
	database := cs.Database
	if database == "" {
		database = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client: client,
		posts:  client.Database(database).Collection(postsCollection),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		if errors.Is(err, mongo.ErrClientDisconnected) {
			return ErrClosed
		}
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

func (s *MongoStore) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	cursor, err := s.posts.Find(ctx, bson.D{}, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, doc.post())
	}
	return posts, nil
}

func (s *MongoStore) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var doc postDocument
	if err := s.posts.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	post := doc.post()
	return &post, nil
}

func (s *MongoStore) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	doc := postDocument{
		Title:   post.Title,
		Content: post.Content,
		Author:  post.Author,
	}
	res, err := s.posts.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("create post: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid

	created := doc.post()
	return &created, nil
}

func (s *MongoStore) UpdatePost(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	// $set with an empty document is rejected by the server.
	if update.IsEmpty() {
		return s.GetPostByID(ctx, id)
	}

	set := bson.D{}
	if update.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *update.Title})
	}
	if update.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *update.Content})
	}
	if update.Author != nil {
		set = append(set, bson.E{Key: "author", Value: *update.Author})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDocument
	err = s.posts.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	updated := doc.post()
	return &updated, nil
}

func (s *MongoStore) DeletePost(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	if _, err := s.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}}); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *MongoStore) DropPosts(ctx context.Context) error {
	if err := s.posts.Drop(ctx); err != nil {
		return fmt.Errorf("drop posts: %w", err)
	}
	return nil
}
