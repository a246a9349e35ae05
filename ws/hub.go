package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// EventPublisher, service katmanının WebSocket event'leri broadcast etmek için
// kullandığı interface.
//
// Dependency Inversion: Service'ler Hub'ın concrete struct'ına değil,
// bu interface'e bağımlıdır. Böylece:
// 1. Service test edilirken mock EventPublisher kullanılabilir
// 2. Hub implementasyonu değişse bile service kodu etkilenmez
type EventPublisher interface {
	BroadcastToAll(event Event)
	BroadcastToAllExcept(excludeUserID string, event Event)
	BroadcastToUser(userID string, event Event)
	GetOnlineUserIDs() []string
	IsUserOnline(userID string) bool
}

// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır (Observer pattern).
//
// Hub.Run() goroutine'i register/unregister channel'larından `select` ile okur:
// - register channel'dan yeni client gelirse → clients map'e ekle
// - unregister channel'dan client gelirse → map'ten çıkar
// Broadcast metotları ise doğrudan RLock altında client buffer'larına yazar.
type Hub struct {
	// clients: userID → Client set (bir kullanıcının birden fazla sekmesi olabilir).
	// Go'da set yoktur, map[*Client]bool kullanılır — bool her zaman true.
	clients map[string]map[*Client]bool

	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// seq: Her outbound event'e verilen artan sayaç.
	// atomic.Int64 — birden fazla goroutine güvenle artırabilir.
	seq atomic.Int64

	// Callback'ler — WS event'lerini service katmanına iletir.
	//
	// Neden callback, neden doğrudan service çağrısı değil?
	// services paketi ws.EventPublisher'ı kullanıyor (broadcast için).
	// ws paketi services'i import etseydi ws → services → ws döngüsü oluşurdu.
	// main.go iki tarafı da gördüğü için bağlamayı orada callback ile yaparız.
	onVoiceJoin        func(userID, channelID string)
	onVoiceLeave       func(userID string)
	onVoiceStateUpdate func(userID string, isMuted, isDeafened *bool)
	onActiveChannel    func(userID, channelID string)
	onDisconnect       func(userID string)
}

// SetVoiceCallbacks, voice event'lerinin service katmanı bağlantısını kurar.
// main.go'da hub.Run() öncesi çağrılır.
func (h *Hub) SetVoiceCallbacks(
	onJoin func(userID, channelID string),
	onLeave func(userID string),
	onStateUpdate func(userID string, isMuted, isDeafened *bool),
) {
	h.onVoiceJoin = onJoin
	h.onVoiceLeave = onLeave
	h.onVoiceStateUpdate = onStateUpdate
}

// SetActiveChannelCallback, aktif kanal değişikliği bildirimini bağlar.
func (h *Hub) SetActiveChannelCallback(fn func(userID, channelID string)) {
	h.onActiveChannel = fn
}

// SetDisconnectCallback, kullanıcının son bağlantısı koptuğunda çağrılacak
// temizlik fonksiyonunu bağlar (voice'tan çıkarma, aktif kanal sıfırlama).
func (h *Hub) SetDisconnectCallback(fn func(userID string)) {
	h.onDisconnect = fn
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	log.Printf("[ws] client connected: user=%s (total connections for user: %d)",
		client.userID, len(h.clients[client.userID]))
}

// removeClient, bir client'ı Hub'dan çıkarır ve send channel'ını kapatır.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)

			// Kullanıcının başka bağlantısı kalmadıysa map'ten sil
			if len(clients) == 0 {
				delete(h.clients, client.userID)
				log.Printf("[ws] user fully disconnected: %s", client.userID)

				// go func ile çağrılır — callback Hub metotlarına dönüp
				// mutex'i tekrar almaya kalkarsa deadlock olmasın.
				if h.onDisconnect != nil {
					go h.onDisconnect(client.userID)
				}
			} else {
				log.Printf("[ws] client disconnected: user=%s (remaining: %d)",
					client.userID, len(clients))
			}
		}
	}
}

// BroadcastToAll, tüm bağlı client'lara event gönderir.
func (h *Hub) BroadcastToAll(event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Buffer dolu — bu client yavaş, kapat
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
	}
}

// BroadcastToAllExcept, belirli bir kullanıcı hariç tüm client'lara gönderir.
// Typing indicator gibi durumlarda gönderene kendi event'i gitmez.
func (h *Hub) BroadcastToAllExcept(excludeUserID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, clients := range h.clients {
		if userID == excludeUserID {
			continue
		}
		for client := range clients {
			select {
			case client.send <- data:
			default:
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
	}
}

// BroadcastToUser, belirli bir kullanıcının tüm bağlantılarına event gönderir.
func (h *Hub) BroadcastToUser(userID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal user event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[userID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
	}
}

// GetOnlineUserIDs, bağlı olan tüm kullanıcı ID'lerini döner.
func (h *Hub) GetOnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	return ids
}

// IsUserOnline, kullanıcının en az bir açık bağlantısı olup olmadığını döner.
// Mention email bildirimi kararı bu kontrole dayanır: online kullanıcıya
// email gitmez, event zaten WS'ten ulaşır.
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[userID]) > 0
}

// Shutdown, tüm client bağlantılarını kapatır (graceful shutdown).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	log.Println("[ws] hub shut down, all connections closed")
}
