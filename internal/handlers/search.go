package handlers

import (
	"net/http"
	"strings"

	"github.com/minhtc/folio/internal/services"
)

// SearchHandler serves cross-provider asset search
type SearchHandler struct {
	search services.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// HandleSearch serves GET /api/search?q=...&class=equity|crypto|all
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeMessage(w, http.StatusBadRequest, "missing search query")
		return
	}
	class := r.URL.Query().Get("class")

	results := h.search.Search(r.Context(), q, class)
	if results == nil {
		results = []services.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
