// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/utils"
)

func (h *Handler) putBlob(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	key := chi.URLParam(r, "key")

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBlobSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "blob too large", http.StatusRequestEntityTooLarge)
			return
		}
		log.Err(err).Str("func", "*Handler.putBlob").Msg("failed to read body")
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := h.services.BlobService.PutBlob(r.Context(), key, data); err != nil {
		writeError(w, r, "*Handler.putBlob", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getBlob(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	data, err := h.services.BlobService.GetBlob(r.Context(), key)
	if err != nil {
		writeError(w, r, "*Handler.getBlob", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) deleteBlob(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.services.BlobService.DeleteBlobs(r.Context(), []string{key}); err != nil {
		writeError(w, r, "*Handler.deleteBlob", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listBlobs(w http.ResponseWriter, r *http.Request) {
	keys, err := h.services.BlobService.ListBlobs(r.Context())
	if err != nil {
		writeError(w, r, "*Handler.listBlobs", err)
		return
	}
	if keys == nil {
		keys = []string{}
	}

	if _, err := utils.WriteJSON(w, adapter.KeysPayload{Keys: keys}, http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.listBlobs").Msg("failed to write response")
	}
}

func (h *Handler) deleteBlobs(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var payload adapter.KeysPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Err(err).Str("func", "*Handler.deleteBlobs").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.BlobService.DeleteBlobs(r.Context(), payload.Keys); err != nil {
		writeError(w, r, "*Handler.deleteBlobs", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.services.BlobService.Ping(r.Context()); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.health").Msg("blob storage unavailable")
		http.Error(w, "blob storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
