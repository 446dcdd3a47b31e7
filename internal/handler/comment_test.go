package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/model"
	"github.com/kavyand/vidstream/internal/utils"
)

type memCommentStore struct {
	nextID   uint64
	comments map[uint64]model.Comment
}

func newMemCommentStore() *memCommentStore {
	return &memCommentStore{comments: map[uint64]model.Comment{}}
}

func (s *memCommentStore) Create(_ context.Context, c *model.Comment) error {
	s.nextID++
	c.ID = s.nextID
	s.comments[c.ID] = *c
	return nil
}

func (s *memCommentStore) GetByID(_ context.Context, id uint64) (model.Comment, error) {
	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *memCommentStore) ListByVideo(_ context.Context, videoID uint64, _, _ int) ([]model.Comment, int, error) {
	var out []model.Comment
	for _, c := range s.comments {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (s *memCommentStore) UpdateContent(_ context.Context, id uint64, content string) error {
	c, ok := s.comments[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Content = content
	s.comments[id] = c
	return nil
}

func (s *memCommentStore) Delete(_ context.Context, id uint64) error {
	delete(s.comments, id)
	return nil
}

type videoSet map[uint64]bool

func (v videoSet) Exists(_ context.Context, id uint64) (bool, error) { return v[id], nil }

func newCommentFixture(actor uint64) (*echo.Echo, *memCommentStore) {
	store := newMemCommentStore()
	h := NewCommentHandler(store, videoSet{10: true})

	e := echo.New()
	e.HTTPErrorHandler = utils.HTTPErrorHandler
	e.POST("/comments/:videoId", h.Add, actAs(actor))
	e.PATCH("/comments/c/:commentId", h.Update, actAs(actor))
	e.DELETE("/comments/c/:commentId", h.Delete, actAs(actor))
	return e, store
}

func jsonReq(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAddCommentOnMissingVideoIs404(t *testing.T) {
	e, _ := newCommentFixture(1)
	rec := jsonReq(e, http.MethodPost, "/comments/99", `{"content":"hi"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestAddCommentEmptyBodyIs400(t *testing.T) {
	e, _ := newCommentFixture(1)
	rec := jsonReq(e, http.MethodPost, "/comments/10", `{"content":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestCommentOwnerLifecycle(t *testing.T) {
	e, store := newCommentFixture(1)

	rec := jsonReq(e, http.MethodPost, "/comments/10", `{"content":"first"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add got status %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	rec = jsonReq(e, http.MethodPatch, "/comments/c/1", `{"content":"edited"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update got status %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if store.comments[1].Content != "edited" {
		t.Fatalf("content = %q, want %q", store.comments[1].Content, "edited")
	}

	rec = jsonReq(e, http.MethodDelete, "/comments/c/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete got status %d, want 200", rec.Code)
	}
	if len(store.comments) != 0 {
		t.Fatal("comment not deleted")
	}
}

func TestCommentNonOwnerIs403MissingIs404(t *testing.T) {
	owner, store := newCommentFixture(1)
	rec := jsonReq(owner, http.MethodPost, "/comments/10", `{"content":"mine"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add got status %d, want 201", rec.Code)
	}

	// Same store, different actor.
	h := NewCommentHandler(store, videoSet{10: true})
	stranger := echo.New()
	stranger.HTTPErrorHandler = utils.HTTPErrorHandler
	stranger.PATCH("/comments/c/:commentId", h.Update, actAs(2))
	stranger.DELETE("/comments/c/:commentId", h.Delete, actAs(2))

	rec = jsonReq(stranger, http.MethodPatch, "/comments/c/1", `{"content":"hijack"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner update got status %d, want 403", rec.Code)
	}
	rec = jsonReq(stranger, http.MethodDelete, "/comments/c/1", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete got status %d, want 403", rec.Code)
	}

	// A missing comment reads as 404 even for a non-owner: the existence
	// check runs before the ownership check.
	rec = jsonReq(stranger, http.MethodDelete, "/comments/c/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing comment got status %d, want 404", rec.Code)
	}
}
