// Package models, voice (ses) ile ilgili struct tanımlarını içerir.
//
// Voice roster verisi EPHEMERAL'dır (geçicidir) — veritabanına yazılmaz.
// Go backend'de in-memory olarak tutulur. Server restart'ta tüm WebSocket
// bağlantıları düşer, dolayısıyla roster'ın da sıfırlanması doğaldır.
package models

import "time"

// VoiceParticipant, bir ses kanalına bağlı tek bir kullanıcının anlık durumu.
type VoiceParticipant struct {
	UserID     string    `json:"user_id"`
	IsMuted    bool      `json:"is_muted"`
	IsDeafened bool      `json:"is_deafened"`
	JoinedAt   time.Time `json:"joined_at"`
}

// VoiceChannelState, bir ses kanalının roster'ı.
//
// Kayıt ilk join'de lazy oluşturulur; son kullanıcı ayrıldığında roster
// boşalır ama kayıt kanal silinene kadar yaşar — IsActive empty↔active
// arasında gidip gelir.
type VoiceChannelState struct {
	ChannelID      string             `json:"channel_id"`
	ConnectedUsers []VoiceParticipant `json:"connected_users"`
	IsActive       bool               `json:"is_active"` // len(ConnectedUsers) > 0
}

// VoiceTokenRequest, ses kanalı medya token'ı isteği.
type VoiceTokenRequest struct {
	ChannelID string `json:"channel_id"`
}

// VoiceTokenResponse, LiveKit token generation yanıtı.
// Client bu bilgilerle doğrudan LiveKit sunucusuna bağlanır.
type VoiceTokenResponse struct {
	Token     string `json:"token"`      // LiveKit JWT — oturum bilgilerini içerir
	URL       string `json:"url"`        // LiveKit WebSocket URL
	ChannelID string `json:"channel_id"` // LiveKit room name = channel ID
}
