package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"archeohub-backend/internal/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

func (h *CatalogHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.FilterArtifacts(r.URL.Query().Get("q")))
}

func (h *CatalogHandler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, found := h.catalog.Artifact(id)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Artifact not found", r))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) ListExcavations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.FilterExcavations(r.URL.Query().Get("q")))
}

func (h *CatalogHandler) GetExcavation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, found := h.catalog.Excavation(id)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Excavation not found", r))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) ListResearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.FilterResearch(r.URL.Query().Get("q")))
}

func (h *CatalogHandler) GetResearch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, found := h.catalog.ResearchTopic(id)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Research topic not found", r))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid ID", r))
		return 0, false
	}
	return id, true
}
