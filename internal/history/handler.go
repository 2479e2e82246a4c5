package history

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/optibridge/service/internal/response"
)

// Store is the subset of Repository the HTTP handlers use.
type Store interface {
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id string) error
}

// Handler holds HTTP handlers for history endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a new history Handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List godoc
//
//	@Summary		List upload history
//	@Description	Returns every completed upload, newest first.
//	@Tags			history
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]Record}
//	@Failure		500	{object}	response.Envelope
//	@Router			/history [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list history failed")
		response.InternalError(w)
		return
	}
	response.OK(w, records)
}

// Delete godoc
//
//	@Summary		Delete history record
//	@Description	Removes a history entry. The uploaded object is not deleted from the provider.
//	@Tags			history
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/history/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		log.Error().Err(err).Str("id", id).Msg("delete history failed")
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"id": id})
}
