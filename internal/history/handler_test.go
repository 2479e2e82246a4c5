package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optibridge/service/internal/response"
)

type fakeStore struct {
	records []Record
	err     error
	deleted []string
}

func (f *fakeStore) List(context.Context) ([]Record, error) { return f.records, f.err }

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return ErrNotFound
}

func newRouter(store Store) http.Handler {
	h := NewHandler(store)
	r := chi.NewRouter()
	r.Get("/history", h.List)
	r.Delete("/history/{id}", h.Delete)
	return r
}

func TestHandlerList(t *testing.T) {
	store := &fakeStore{records: []Record{{ID: "b", CreatedAt: 2}, {ID: "a", CreatedAt: 1}}}
	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool     `json:"success"`
		Data    []Record `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "b", body.Data[0].ID)
}

func TestHandlerListFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeStore{err: errors.New("db down")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlerDelete(t *testing.T) {
	store := &fakeStore{records: []Record{{ID: "a"}}}
	router := newRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/history/a", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a"}, store.deleted)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/history/a", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.False(t, env.Success)
	assert.Equal(t, ErrNotFound.Error(), env.Error)
}
