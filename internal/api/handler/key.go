package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/remiblancher/capikey/internal/api/dto"
	apierrors "github.com/remiblancher/capikey/internal/api/errors"
	"github.com/remiblancher/capikey/internal/api/service"
)

// KeyHandler handles blob and XML key requests.
type KeyHandler struct {
	svc *service.KeyService
}

// NewKeyHandler creates a new KeyHandler.
func NewKeyHandler(svc *service.KeyService) *KeyHandler {
	return &KeyHandler{svc: svc}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("Invalid JSON request body"))
		return false
	}
	return true
}

func decodeBlob(w http.ResponseWriter, b *dto.BinaryData) ([]byte, bool) {
	data, err := b.Decode()
	if err != nil {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("Invalid blob encoding: "+err.Error()))
		return nil, false
	}
	return data, true
}

func respondMapped(w http.ResponseWriter, err error) {
	status, apiErr := apierrors.MapError(err)
	respondError(w, status, apiErr)
}

// Parse handles POST /api/v1/blob/parse
func (h *KeyHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req dto.BlobParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	data, ok := decodeBlob(w, &req.Blob)
	if !ok {
		return
	}

	resp, err := h.svc.ParseBlob(r.Context(), data, req.IncludePrivate)
	if err != nil {
		respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Build handles POST /api/v1/blob/build
func (h *KeyHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req dto.BlobBuildRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.svc.BuildBlob(r.Context(), req.XML, req.Private)
	if err != nil {
		respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Weaken handles POST /api/v1/blob/weaken
func (h *KeyHandler) Weaken(w http.ResponseWriter, r *http.Request) {
	var req dto.BlobWeakenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	data, ok := decodeBlob(w, &req.Blob)
	if !ok {
		return
	}

	resp, err := h.svc.WeakenBlob(r.Context(), data)
	if err != nil {
		respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Layout handles GET /api/v1/layout/{bits}
func (h *KeyHandler) Layout(w http.ResponseWriter, r *http.Request) {
	bits, err := strconv.Atoi(chi.URLParam(r, "bits"))
	if err != nil {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("bits must be an integer"))
		return
	}

	resp, err := h.svc.Layout(bits)
	if err != nil {
		respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Redact handles POST /api/v1/xml/redact
func (h *KeyHandler) Redact(w http.ResponseWriter, r *http.Request) {
	var req dto.XMLRedactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.svc.RedactXML(req.XML)
	if err != nil {
		respondMapped(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
