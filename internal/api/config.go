package api

import (
	"database/sql"
	"net/http"

	"github.com/zanvidmar/vitrina/internal/store"
)

// ConfigHandler exposes the site configuration key/value store.
type ConfigHandler struct {
	DB *sql.DB
}

// Get handles GET /api/config.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := store.ListSettings(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load configuration")
		return
	}
	jsonResponse(w, http.StatusOK, settings)
}

// Put handles PUT /api/config: upserts every key in the body.
func (h *ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req) == 0 {
		jsonError(w, http.StatusBadRequest, "no settings given")
		return
	}

	for key, value := range req {
		if key == "" {
			jsonError(w, http.StatusBadRequest, "empty setting key")
			return
		}
		if err := store.SetSetting(r.Context(), h.DB, key, value); err != nil {
			jsonError(w, http.StatusBadRequest, "failed to store setting "+key)
			return
		}
	}

	settings, _ := store.ListSettings(r.Context(), h.DB)
	jsonResponse(w, http.StatusOK, settings)
}
