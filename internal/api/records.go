package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/zanvidmar/vitrina/internal/model"
	"github.com/zanvidmar/vitrina/internal/store"
)

// RecordsHandler handles CRUD for all content collections. The collection
// comes from the path and is validated against the fixed set.
type RecordsHandler struct {
	DB *sql.DB
}

type recordRequest struct {
	Title     string          `json:"title"`
	SortOrder int             `json:"sort_order"`
	Payload   json.RawMessage `json:"payload"`
}

type idsRequest struct {
	IDs []int64 `json:"ids"`
}

func collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("collection")
	if !model.ValidCollection(name) {
		jsonError(w, http.StatusNotFound, "unknown collection")
		return "", false
	}
	return name, true
}

// List handles GET /api/collections/{collection}. The archived query parameter selects
// active (default), archived, or all records.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	name, ok := collection(w, r)
	if !ok {
		return
	}

	var filter store.RecordFilter
	switch r.URL.Query().Get("archived") {
	case "", "false":
		filter = store.Active
	case "true":
		filter = store.Archived
	case "all":
		filter = store.RecordFilter{}
	default:
		jsonError(w, http.StatusBadRequest, "archived must be true, false, or all")
		return
	}

	records, err := store.SelectRecords(r.Context(), h.DB, name, filter)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// Create handles POST /api/collections/{collection}.
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, ok := collection(w, r)
	if !ok {
		return
	}

	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}

	rec, err := store.InsertRecord(r.Context(), h.DB, name, req.Title, req.SortOrder, req.Payload)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to create record")
		return
	}

	jsonResponse(w, http.StatusCreated, rec)
}

// Get handles GET /api/collections/{collection}/{id}.
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := collection(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	rec, err := store.GetRecord(r.Context(), h.DB, name, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get record")
		return
	}
	if rec == nil {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}

	jsonResponse(w, http.StatusOK, rec)
}

// Update handles PUT /api/collections/{collection}/{id}.
func (h *RecordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	name, ok := collection(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}

	existing, err := store.GetRecord(r.Context(), h.DB, name, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get record")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}

	if err := store.UpdateRecord(r.Context(), h.DB, name, id, req.Title, req.SortOrder, req.Payload); err != nil {
		jsonError(w, http.StatusBadRequest, "failed to update record")
		return
	}

	rec, _ := store.GetRecord(r.Context(), h.DB, name, id)
	jsonResponse(w, http.StatusOK, rec)
}

// Archive handles POST /api/collections/{collection}/archive.
func (h *RecordsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// Restore handles POST /api/collections/{collection}/restore.
func (h *RecordsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *RecordsHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	name, ok := collection(w, r)
	if !ok {
		return
	}

	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "ids required")
		return
	}

	var err error
	if archived {
		err = store.ArchiveRecords(r.Context(), h.DB, name, req.IDs)
	} else {
		err = store.RestoreRecords(r.Context(), h.DB, name, req.IDs)
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update records")
		return
	}

	key := "restored"
	if archived {
		key = "archived"
	}
	jsonResponse(w, http.StatusOK, map[string]int{key: len(req.IDs)})
}

// Delete handles DELETE /api/collections/{collection}: permanent removal of the given ids.
func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := collection(w, r)
	if !ok {
		return
	}

	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "ids required")
		return
	}

	if err := store.DeleteRecords(r.Context(), h.DB, name, req.IDs); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete records")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]int{"deleted": len(req.IDs)})
}
