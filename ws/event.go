// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Kullanıcı mesaj gönderir → HTTP POST → Service → DB kayıt
// 2. Service, Hub'ın BroadcastToAll metodunu çağırır
// 3. Hub, event'i tüm bağlı client'lara iletir
// 4. Her client'ın WritePump'ı event'i WebSocket'e yazar
// 5. Console frontend'i event'i alır ve kendi store'unu günceller
package ws

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "message_create", "heartbeat" vb.
// Data: Event'e özgü payload — mesaj objesi, kanal bilgisi vb.
// Seq (sequence number): Her outbound event'e verilen artan sayı.
//   Client eksik event tespit etmek için seq'i takip eder:
//   seq 5'ten sonra seq 7 gelirse 6 kaybolmuş demektir → resync.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat     = "heartbeat"      // Client her 30sn'de gönderir — "hâlâ bağlıyım" sinyali
	OpTyping        = "typing"         // Kullanıcı yazıyor
	OpActiveChannel = "active_channel" // Kullanıcının odakta olduğu kanal değişti
)

// Server → Client operasyonları
const (
	OpReady        = "ready"         // Bağlantı kurulduğunda ilk gönderilen
	OpHeartbeatAck = "heartbeat_ack" // Heartbeat'e yanıt — "seni duydum"

	OpMessageCreate = "message_create" // Yeni mesaj oluşturuldu

	OpChannelCreate = "channel_create" // Yeni kanal oluşturuldu
	OpChannelUpdate = "channel_update" // Kanal düzenlendi
	OpChannelDelete = "channel_delete" // Kanal silindi

	OpTypingStart = "typing_start" // Bir kullanıcı yazıyor

	OpReactionUpdate = "reaction_update" // Mesajın reaction listesi güncellendi

	OpReadStateUpdate = "read_state_update" // Kullanıcının okuma imleci ilerledi
)

// Voice (ses kanalı) operasyonları
const (
	// Client → Server
	OpVoiceJoin           = "voice_join"                 // Kullanıcı ses kanalına katılmak istiyor
	OpVoiceLeave          = "voice_leave"                // Kullanıcı ses kanalından ayrılmak istiyor
	OpVoiceStateUpdateReq = "voice_state_update_request" // Kullanıcı mute/deafen toggle'lıyor

	// Server → Client
	OpVoiceStateUpdate = "voice_state_update" // Bir kullanıcının ses durumu değişti
	OpVoiceStatesSync  = "voice_states_sync"  // Tüm ses durumlarının bulk sync'i (bağlantıda)
)

// ReadyData, bağlantı kurulduğunda client'a gönderilen ilk event'in payload'ı.
// Console bu event ile online kullanıcı setini kurar ve kanal listesini fetch eder.
type ReadyData struct {
	OnlineUserIDs []string `json:"online_user_ids"`
}

// TypingData, typing event'inin payload'ı (Client → Server).
type TypingData struct {
	ChannelID string `json:"channel_id"`
}

// TypingStartData, typing_start event'inin payload'ı (broadcast edilen).
type TypingStartData struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
}

// ActiveChannelData, active_channel event'inin payload'ı (Client → Server).
// Boş ChannelID = kullanıcı hiçbir kanala odaklı değil.
type ActiveChannelData struct {
	ChannelID string `json:"channel_id"`
}

// ReadStateUpdateData, read_state_update event'inin payload'ı.
// Aynı kullanıcının diğer sekmelerine gönderilir — unread badge senkronu.
type ReadStateUpdateData struct {
	ChannelID   string `json:"channel_id"`
	LastReadSeq int64  `json:"last_read_seq"`
}

// VoiceJoinData, voice_join event'inin payload'ı (Client → Server).
type VoiceJoinData struct {
	ChannelID string `json:"channel_id"`
}

// VoiceStateUpdateRequestData, voice_state_update_request payload'ı.
// Pointer kullanılır — nil ise o alan değiştirilmez (partial update).
type VoiceStateUpdateRequestData struct {
	IsMuted    *bool `json:"is_muted,omitempty"`
	IsDeafened *bool `json:"is_deafened,omitempty"`
}

// VoiceStateUpdateBroadcast, voice_state_update event'inin payload'ı (Server → Client).
type VoiceStateUpdateBroadcast struct {
	UserID     string `json:"user_id"`
	ChannelID  string `json:"channel_id"`
	IsMuted    bool   `json:"is_muted"`
	IsDeafened bool   `json:"is_deafened"`
	Action     string `json:"action"` // "join", "leave", "update"
}

// VoiceStatesSyncData, voice_states_sync event'inin payload'ı (Server → Client).
type VoiceStatesSyncData struct {
	States []VoiceStateItem `json:"states"`
}

// VoiceStateItem, sync payload'ındaki tek bir voice state.
// models.VoiceParticipant ile aynı alanları taşır — ws paketinin models'a
// bağımlılığını kırmak için ayrı tanımlanır.
type VoiceStateItem struct {
	UserID     string `json:"user_id"`
	ChannelID  string `json:"channel_id"`
	IsMuted    bool   `json:"is_muted"`
	IsDeafened bool   `json:"is_deafened"`
}
