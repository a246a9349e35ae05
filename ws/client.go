package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	// Bu süre aşılırsa bağlantı kapatılır (ağ sorunu olabilir).
	writeWait = 10 * time.Second

	// pongWait: Client'ın heartbeat göndermesi için beklenen maksimum süre.
	// 3 heartbeat kaçırma = 30s × 3 = 90s.
	pongWait = 90 * time.Second

	// maxMessageSize: Client'ın gönderebileceği maksimum mesaj boyutu (byte).
	// WebSocket mesajları küçük olmalı — büyük veri HTTP ile gönderilir.
	maxMessageSize = 4096

	// sendBufferSize: Her client'ın send channel'ının buffer boyutu.
	// Buffer doluysa client yavaş demektir — bağlantı kapatılır.
	sendBufferSize = 256
)

// Client, tek bir WebSocket bağlantısını temsil eder.
//
// Her bağlantı için iki goroutine oluşturulur:
// - ReadPump: Client'dan gelen mesajları okur → callback'lere iletir
// - WritePump: Hub'dan gelen mesajları client'a yazar
//
// gorilla/websocket aynı anda sadece bir okuma ve bir yazma destekler;
// iki ayrı goroutine ile okuma ve yazma birbirini bloklamaz.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	// send, client'a gönderilecek mesajların buffer'landığı channel.
	// Hub `client.send <- data` yazar, WritePump okur.
	send chan []byte

	mu sync.Mutex // conn.WriteMessage çağrılarını korur
}

// ReadPump, WebSocket bağlantısından gelen mesajları okur ve işler.
// Bağlantı kapanana kadar döngüde kalır; kapandığında Hub'dan çıkış yapar.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	// Her heartbeat geldiğinde deadline yenilenir.
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
		return
	}

	for {
		_, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for user %s: %v", c.userID, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(rawMessage, &event); err != nil {
			log.Printf("[ws] invalid message from user %s: %v", c.userID, err)
			continue
		}

		c.handleEvent(event)
	}
}

// handleEvent, client'dan gelen event'leri türüne göre işler.
func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		// Heartbeat geldi — deadline'ı yenile ve ack gönder.
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	case OpTyping:
		c.handleTyping(event)

	case OpActiveChannel:
		c.handleActiveChannel(event)

	case OpVoiceJoin:
		c.handleVoiceJoin(event)

	case OpVoiceLeave:
		c.handleVoiceLeave()

	case OpVoiceStateUpdateReq:
		c.handleVoiceStateUpdate(event)

	default:
		log.Printf("[ws] unknown op from user %s: %s", c.userID, event.Op)
	}
}

// handleTyping, typing event'ini işler ve diğer kullanıcılara broadcast eder.
func (c *Client) handleTyping(event Event) {
	// event.Data tipi `any` — doğrudan cast edilemez.
	// JSON'a çevirip tekrar parse etmek en güvenli yöntem.
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return
	}

	var typing TypingData
	if err := json.Unmarshal(dataBytes, &typing); err != nil {
		return
	}

	if typing.ChannelID == "" {
		return
	}

	c.hub.BroadcastToAllExcept(c.userID, Event{
		Op: OpTypingStart,
		Data: TypingStartData{
			UserID:    c.userID,
			ChannelID: typing.ChannelID,
		},
	})
}

// handleActiveChannel, kullanıcının odaktaki kanalının değiştiğini bildirir.
// Boş channel_id geçerlidir — kullanıcı hiçbir kanala bakmıyor demektir.
func (c *Client) handleActiveChannel(event Event) {
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return
	}

	var data ActiveChannelData
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return
	}

	// Callback pattern: state güncelleme sorumluluğu main.go'daki bağlantıya ait.
	// go func ile çağrılır — Hub mutex'i ile deadlock önlenir.
	if c.hub.onActiveChannel != nil {
		go c.hub.onActiveChannel(c.userID, data.ChannelID)
	}
}

// ─── Voice Event Handlers ───

// handleVoiceJoin, voice_join event'ini işler.
// Client { op: "voice_join", d: { channel_id: "abc" } } gönderdiğinde
// Hub'ın voice join callback'ini tetikler.
func (c *Client) handleVoiceJoin(event Event) {
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return
	}

	var data VoiceJoinData
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return
	}

	if data.ChannelID == "" {
		log.Printf("[ws] voice_join without channel_id from user %s", c.userID)
		return
	}

	if c.hub.onVoiceJoin != nil {
		go c.hub.onVoiceJoin(c.userID, data.ChannelID)
	}
}

// handleVoiceLeave, voice_leave event'ini işler.
func (c *Client) handleVoiceLeave() {
	if c.hub.onVoiceLeave != nil {
		go c.hub.onVoiceLeave(c.userID)
	}
}

// handleVoiceStateUpdate, voice_state_update_request event'ini işler.
// Pointer alanlar nil ise dokunulmaz (partial update).
func (c *Client) handleVoiceStateUpdate(event Event) {
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return
	}

	var data VoiceStateUpdateRequestData
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return
	}

	if c.hub.onVoiceStateUpdate != nil {
		go c.hub.onVoiceStateUpdate(c.userID, data.IsMuted, data.IsDeafened)
	}
}

// sendEvent, client'a tek bir event gönderir.
func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for user %s: %v", c.userID, err)
		return
	}

	select {
	case c.send <- data:
	default:
		// Buffer dolu — client muhtemelen donmuş, bağlantıyı kapat
		log.Printf("[ws] send buffer full for user %s, dropping connection", c.userID)
		c.hub.unregister <- c
	}
}

// WritePump, Hub'dan gelen mesajları WebSocket bağlantısına yazar.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			// Channel kapatıldı — Hub client'ı çıkardı
			c.writeMessage(websocket.CloseMessage, nil)
			return
		}

		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// writeMessage, WebSocket'e mesaj yazar (mutex ile korunur).
// gorilla/websocket conn'a aynı anda birden fazla yazma yasak.
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
