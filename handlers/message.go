package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/pkg/ratelimit"
	"github.com/akinalp/opsdesk/services"
)

// MessageHandler, mesaj endpoint'lerini yöneten struct.
type MessageHandler struct {
	messageService services.MessageService
	limiter        *ratelimit.MessageRateLimiter
}

// NewMessageHandler, constructor.
// limiter nil olabilir — o durumda rate limit uygulanmaz (testler).
func NewMessageHandler(messageService services.MessageService, limiter *ratelimit.MessageRateLimiter) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		limiter:        limiter,
	}
}

// List godoc
// GET /api/channels/{id}/messages?limit=50&before_seq=120
// Seq ASC sıralı, zenginleştirilmiş mesaj sayfası döner.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("id")
	limit := parseQueryInt(r, "limit", 50)

	var beforeSeq int64
	if raw := r.URL.Query().Get("before_seq"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "before_seq must be a number")
			return
		}
		beforeSeq = parsed
	}

	page, err := h.messageService.ListMessages(r.Context(), channelID, limit, beforeSeq)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Create godoc
// POST /api/channels/{id}/messages
// Yeni mesaj gönderir. Rate limit aşılırsa 429 + Retry-After döner.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	if h.limiter != nil && !h.limiter.Allow(claims.UserID) {
		seconds := h.limiter.CooldownSeconds(claims.UserID)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			fmt.Sprintf("too many messages, retry in %d second(s)", seconds))
		return
	}

	var req models.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.messageService.SendMessage(
		r.Context(), r.PathValue("id"), claims.UserID, claims.DisplayName, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, message)
}

// Search godoc
// GET /api/messages/search?q=rapor&channel_id=abc&limit=25
// channel_id verilmezse tüm kanallarda arar.
func (h *MessageHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	channelID := r.URL.Query().Get("channel_id")
	limit := parseQueryInt(r, "limit", 25)

	messages, err := h.messageService.SearchMessages(r.Context(), channelID, query, limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, messages)
}
