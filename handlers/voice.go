package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/services"
)

// VoiceHandler, ses kanalı endpoint'lerini yöneten struct.
//
// Join/leave/mute akışı WS üzerinden gider (ws paketi callback'leri);
// HTTP tarafında sadece token üretimi ve roster sorgusu vardır.
type VoiceHandler struct {
	voiceService services.VoiceService
}

// NewVoiceHandler, constructor.
func NewVoiceHandler(voiceService services.VoiceService) *VoiceHandler {
	return &VoiceHandler{voiceService: voiceService}
}

// Token godoc
// POST /api/voice/token
// Body: { "channel_id": "abc" }
// LiveKit medya token'ı üretir — client bununla SFU'ya bağlanır.
func (h *VoiceHandler) Token(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req models.VoiceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChannelID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "channel_id is required")
		return
	}

	resp, err := h.voiceService.GenerateToken(r.Context(), claims.UserID, claims.DisplayName, req.ChannelID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, resp)
}

// State godoc
// GET /api/channels/{id}/voice
// Kanalın anlık voice roster'ını döner.
func (h *VoiceHandler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.voiceService.ChannelState(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, state)
}
