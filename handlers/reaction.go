package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/services"
)

// ReactionHandler, emoji reaction endpoint'lerini yöneten struct.
type ReactionHandler struct {
	reactionService services.ReactionService
}

// NewReactionHandler, constructor.
func NewReactionHandler(reactionService services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

type reactionRequest struct {
	Emoji string `json:"emoji"`
}

// Add godoc
// PUT /api/messages/{id}/reactions
// İdempotent: aynı emoji'yi ikinci kez eklemek hata değildir, sayaç değişmez.
func (h *ReactionHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.reactionService.AddReaction(r.Context(), r.PathValue("id"), claims.UserID, req.Emoji); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "reaction added"})
}

// Remove godoc
// DELETE /api/messages/{id}/reactions
// İdempotent: olmayan reaction'ı silmek de başarılı sayılır.
func (h *ReactionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.reactionService.RemoveReaction(r.Context(), r.PathValue("id"), claims.UserID, req.Emoji); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "reaction removed"})
}
