package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BorisDmv/blog-posts-api/internal/db"
	"github.com/BorisDmv/blog-posts-api/internal/logging"
	"github.com/BorisDmv/blog-posts-api/internal/models"
)

// PageSize caps every list response. There is no cursor.
const PageSize = 10

const internalErrorMessage = "Internal server error"

type PostsHandler struct {
	store db.Store
}

// text is a request field that accepts a JSON string, number or boolean.
// Numbers and booleans keep their literal JSON text.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v.(type) {
	case float64, bool:
		*t = text(bytes.TrimSpace(b))
		return nil
	}
	return fmt.Errorf("expected text, got %s", b)
}

func (t *text) ptr() *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

// CreatePostRequest uses pointers so a missing key can be told apart from an
// empty value.
type CreatePostRequest struct {
	Title   *text `json:"title"`
	Content *text `json:"content"`
	Author  *text `json:"author"`
}

type UpdatePostRequest struct {
	ID      *string `json:"id"`
	Title   *text   `json:"title"`
	Content *text   `json:"content"`
	Author  *text   `json:"author"`
}

func NewPostsHandler(store db.Store) *PostsHandler {
	return &PostsHandler{store: store}
}

// Routes mounts the posts collection on r.
func (h *PostsHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context(), PageSize)
	if err != nil {
		h.storageError(w, r, "", err)
		return
	}
	respondJSON(w, http.StatusOK, models.SerializeAll(posts))
}

// GetByID answers 500 for unknown and malformed ids alike.
func (h *PostsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.store.GetPostByID(r.Context(), id)
	if err != nil {
		h.storageError(w, r, id, err)
		return
	}
	respondJSON(w, http.StatusOK, models.Serialize(*post))
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	required := []struct {
		name  string
		value *text
	}{
		{"title", req.Title},
		{"content", req.Content},
		{"author", req.Author},
	}
	for _, field := range required {
		if field.value == nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("Missing %q in request body", field.name))
			return
		}
	}

	created, err := h.store.CreatePost(r.Context(), models.Post{
		Title:   string(*req.Title),
		Content: string(*req.Content),
		Author:  models.SplitFullName(string(*req.Author)),
	})
	if err != nil {
		h.storageError(w, r, "", err)
		return
	}
	logging.FromContext(r.Context()).Debug().Str("post_id", created.ID).Msg("post created")
	respondJSON(w, http.StatusCreated, models.Serialize(*created))
}

func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.ID == nil || id == "" || *req.ID != id {
		bodyID := "<missing>"
		if req.ID != nil {
			bodyID = *req.ID
		}
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Request path id (%s) and request body id (%s) must match", id, bodyID))
		return
	}

	update := models.PostUpdate{Title: req.Title.ptr(), Content: req.Content.ptr()}
	if req.Author != nil {
		author := models.SplitFullName(string(*req.Author))
		update.Author = &author
	}

	updated, err := h.store.UpdatePost(r.Context(), id, update)
	if err != nil {
		h.storageError(w, r, id, err)
		return
	}
	respondJSON(w, http.StatusOK, models.Serialize(*updated))
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeletePost(r.Context(), id); err != nil {
		h.storageError(w, r, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// storageError logs err and answers with a generic 500. Not-found and
// malformed ids are logged at warn level but share the same response.
func (h *PostsHandler) storageError(w http.ResponseWriter, r *http.Request, id string, err error) {
	logger := logging.FromContext(r.Context())
	event := logger.Error()
	if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
		event = logger.Warn()
	}
	if id != "" {
		event = event.Str("post_id", id)
	}
	event.Err(err).Msg("storage operation failed")

	respondError(w, http.StatusInternalServerError, internalErrorMessage)
}

// NotFound is the fallback for unrouted paths.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Not Found", http.StatusNotFound)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
