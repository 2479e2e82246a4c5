package upload

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/optibridge/service/internal/config"
	"github.com/optibridge/service/internal/provider"
	"github.com/optibridge/service/internal/response"
	"github.com/optibridge/service/internal/transcode"
)

// maxUploadBytes caps multipart and clipboard request bodies.
const maxUploadBytes = 64 << 20

// maxRequestBytes caps small JSON request bodies.
const maxRequestBytes = 1 << 20

// SettingsStore loads and saves the user settings document.
type SettingsStore interface {
	Load() (config.Settings, error)
	Save(config.Settings) error
}

// Handler holds HTTP handlers for image and settings endpoints.
type Handler struct {
	svc      *Service
	settings SettingsStore
}

// NewHandler creates a new upload Handler.
func NewHandler(svc *Service, settings SettingsStore) *Handler {
	return &Handler{svc: svc, settings: settings}
}

type clipboardRequest struct {
	Width  int    `json:"width"  example:"1920"`
	Height int    `json:"height" example:"1080"`
	RGBA   string `json:"rgba"   example:"/////w=="`
}

type uploadRequest struct {
	Provider string `json:"provider" example:"r2"`
}

// ProcessFile godoc
//
//	@Summary		Process an image file
//	@Description	Transcodes the uploaded image to WebP, clamping its width to the configured maximum, and caches the result for a later upload.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Image file (JPEG, PNG, GIF, BMP, TIFF or WebP)"
//	@Success		201		{object}	response.Envelope{data=Processed}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/images [post]
func (h *Handler) ProcessFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "could not read uploaded file")
		return
	}
	h.process(w, r, FromBytes(data))
}

// ProcessClipboard godoc
//
//	@Summary		Process a clipboard snapshot
//	@Description	Transcodes a raw RGBA pixel buffer (base64, width*height*4 bytes) to WebP and caches the result.
//	@Tags			images
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		clipboardRequest	true	"RGBA snapshot"
//	@Success		201		{object}	response.Envelope{data=Processed}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/images/clipboard [post]
func (h *Handler) ProcessClipboard(w http.ResponseWriter, r *http.Request) {
	var req clipboardRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	pix, err := base64.StdEncoding.DecodeString(req.RGBA)
	if err != nil {
		response.BadRequest(w, "rgba must be standard base64")
		return
	}
	h.process(w, r, FromRGBA(req.Width, req.Height, pix))
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request, src Source) {
	settings, err := h.settings.Load()
	if err != nil {
		log.Error().Err(err).Msg("load settings failed")
		response.InternalError(w)
		return
	}

	out, err := h.svc.Process(r.Context(), src, settings.MaxWidth)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, out)
}

// Upload godoc
//
//	@Summary		Upload a processed image
//	@Description	Uploads the cached image identified by handle to the given provider using the saved credentials, records it in history and frees the handle. The handle stays valid if the upload fails.
//	@Tags			images
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			handle	path		string			true	"Handle returned by a process call"
//	@Param			request	body		uploadRequest	true	"Provider (cloudinary or r2)"
//	@Success		200		{object}	response.Envelope{data=Result}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/images/{handle}/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	settings, err := h.settings.Load()
	if err != nil {
		log.Error().Err(err).Msg("load settings failed")
		response.InternalError(w)
		return
	}

	res, err := h.svc.Upload(r.Context(), chi.URLParam(r, "handle"), req.Provider, settings.Credentials())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, res)
}

// GetSettings godoc
//
//	@Summary		Get settings
//	@Description	Returns the saved provider credentials and image options, or the defaults when nothing was saved. Secrets are masked to their last four characters.
//	@Tags			settings
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=config.Settings}
//	@Failure		500	{object}	response.Envelope
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load()
	if err != nil {
		log.Error().Err(err).Msg("load settings failed")
		response.InternalError(w)
		return
	}
	response.OK(w, settings.Masked())
}

// UpdateSettings godoc
//
//	@Summary		Save settings
//	@Description	Replaces the saved settings document. A secret sent back empty or in its masked form keeps the saved value.
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		config.Settings	true	"Settings"
//	@Success		200		{object}	response.Envelope{data=config.Settings}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings := config.DefaultSettings()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&settings); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if settings.MaxWidth <= 0 {
		response.BadRequest(w, "settings_max_width must be positive")
		return
	}

	stored, err := h.settings.Load()
	if err != nil {
		log.Error().Err(err).Msg("load settings failed")
		response.InternalError(w)
		return
	}
	settings = settings.KeepSecrets(stored)

	if err := h.settings.Save(settings); err != nil {
		log.Error().Err(err).Msg("save settings failed")
		response.InternalError(w)
		return
	}
	response.OK(w, settings.Masked())
}

func writeError(w http.ResponseWriter, err error) {
	var perr *provider.Error
	switch {
	case errors.Is(err, transcode.ErrDecode),
		errors.Is(err, transcode.ErrEncode),
		errors.Is(err, transcode.ErrInvalidSnapshot),
		errors.Is(err, provider.ErrInvalidProvider),
		errors.Is(err, provider.ErrMissingCredentials):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrImageNotFound):
		response.NotFound(w, err.Error())
	case errors.As(err, &perr):
		response.BadGateway(w, perr.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		response.InternalError(w)
	}
}
