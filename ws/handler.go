package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/akinalp/opsdesk/models"
)

// TokenValidator, WebSocket handler'ın JWT doğrulaması için kullandığı interface.
//
// Neden services.TokenService yerine kendi interface'imizi tanımlıyoruz?
// Circular dependency'yi önlemek için:
// - services paketi ws.EventPublisher'ı kullanıyor (broadcast için)
// - ws paketi services'i kullansaydı ws → services → ws döngüsü oluşurdu
//
// main.go'da tokenService bu interface'i implicit olarak karşılar.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// VoiceStateProvider, bağlantı anında gönderilen voice sync verisini sağlar.
// Aynı circular dependency gerekçesiyle dar bir interface olarak tanımlı.
type VoiceStateProvider interface {
	AllVoiceStates() []VoiceStateItem
}

// upgrader, HTTP bağlantısını WebSocket bağlantısına yükseltir.
//
// WebSocket normal HTTP isteği olarak başlar ve "upgrade" ile kalıcı,
// çift yönlü bir bağlantıya dönüşür.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin: Production'da domain kontrolü yapılmalı.
	// Şimdilik tüm origin'lere izin veriyoruz (development için).
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
	voiceStates    VoiceStateProvider
}

// NewHandler, yeni bir WebSocket handler oluşturur.
// voiceStates nil olabilir — o durumda bağlantıda voice sync gönderilmez.
func NewHandler(hub *Hub, tokenValidator TokenValidator, voiceStates VoiceStateProvider) *Handler {
	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
		voiceStates:    voiceStates,
	}
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve client'ı Hub'a kaydeder.
//
// Neden normal auth middleware kullanmıyoruz?
// WebSocket bağlantısında HTTP header göndermek zordur (tarayıcı sınırlaması).
// Bu yüzden token URL query parameter'ı olarak gönderilir:
//
//	ws://server/ws?token=JWT_TOKEN
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan []byte, sendBufferSize),
	}

	h.hub.register <- client

	// Bağlantı kurulunca client ilk olarak ready + voice sync alır.
	client.sendEvent(Event{
		Op:   OpReady,
		Data: ReadyData{OnlineUserIDs: h.hub.GetOnlineUserIDs()},
	})
	if h.voiceStates != nil {
		client.sendEvent(Event{
			Op:   OpVoiceStatesSync,
			Data: VoiceStatesSyncData{States: h.voiceStates.AllVoiceStates()},
		})
	}

	// WritePump ayrı goroutine'de, ReadPump mevcut goroutine'de çalışır.
	// ReadPump bağlantı kapanana kadar bloklar — handler erken dönmez.
	go client.WritePump()
	client.ReadPump()
}
