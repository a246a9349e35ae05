package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/services"
)

// ChannelHandler, kanal endpoint'lerini yöneten struct.
type ChannelHandler struct {
	channelService services.ChannelService
}

// NewChannelHandler, constructor.
func NewChannelHandler(channelService services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// List godoc
// GET /api/channels
// Tüm kanalları isteği yapan kullanıcıya göre zenginleştirilmiş döner
// (son mesaj, okunmamış sayısı, voice roster).
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	channels, err := h.channelService.ListChannels(r.Context(), claims.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channels)
}

// Get godoc
// GET /api/channels/{id}
func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channelService.GetChannel(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channel)
}

// Create godoc
// POST /api/channels
// Yeni kanal oluşturur.
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req models.CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channel, err := h.channelService.CreateChannel(r.Context(), &req, claims.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, channel)
}

// Update godoc
// PATCH /api/channels/{id}
// Kanalı günceller. Type değişikliği isteği 409 ile reddedilir.
//
// r.PathValue("id") — Go 1.22+ ile gelen path parameter desteği.
func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.UpdateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channel, err := h.channelService.UpdateChannel(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channel)
}

// Delete godoc
// DELETE /api/channels/{id}
func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.channelService.DeleteChannel(r.Context(), r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "channel deleted"})
}

// MarkRead godoc
// POST /api/channels/{id}/read
// Okuma imlecini ilerletir. Body: { "seq": 42 } — seq verilmez veya 0 ise
// kanalın tamamı okunmuş sayılır.
func (h *ChannelHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var body struct {
		Seq int64 `json:"seq"`
	}
	// Body opsiyonel — yoksa seq=0 kalır.
	_ = json.NewDecoder(r.Body).Decode(&body)

	if err := h.channelService.MarkRead(r.Context(), claims.UserID, r.PathValue("id"), body.Seq); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "marked as read"})
}

// parseQueryInt, query parametresini int olarak okur; yok veya bozuksa def döner.
func parseQueryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
