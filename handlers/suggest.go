package handlers

import (
	"net/http"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/services"
)

// SuggestHandler, mention öneri araması endpoint'ini yöneten struct.
//
// Debounce client tarafında mention.Suggester ile yapılır; bu endpoint
// her çağrıda anlık sonuç döner. TTL cache tekrarlanan prefix'leri emer.
type SuggestHandler struct {
	suggestService services.SuggestService
}

// NewSuggestHandler, constructor.
func NewSuggestHandler(suggestService services.SuggestService) *SuggestHandler {
	return &SuggestHandler{suggestService: suggestService}
}

// Search godoc
// GET /api/suggestions?kind=user&q=jo
// kind: user | task | project. Boş q geçerli — ilk N kayıt döner.
func (h *SuggestHandler) Search(w http.ResponseWriter, r *http.Request) {
	kind := models.MentionKind(r.URL.Query().Get("kind"))
	query := r.URL.Query().Get("q")

	suggestions, err := h.suggestService.Search(r.Context(), kind, query)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, suggestions)
}
