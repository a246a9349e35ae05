// Package main — WebSocket Hub callback wire-up.
//
// registerHubCallbacks, Hub'ın voice/aktif-kanal/disconnect callback'lerini
// ayarlar.
//
// Bu callback'ler neden burada (main package'da)?
// Hub ws paketinde yaşıyor, ama iş mantığı service katmanında.
// Hub'ın service'lere bağımlı olmasını istemiyoruz (Dependency Inversion).
// main package wire-up noktasıdır — tüm katmanları birbirine bağlar.
//
// Callback'ler client read loop'undan ve Hub.Run() goroutine'inden ayrı
// goroutine'de çalışır (`go callback()` ile çağrılır), böylece Hub'ın
// mutex Lock'u ile BroadcastToAll'ın RLock'u çakışmaz.
package main

import (
	"context"
	"log"

	"github.com/akinalp/opsdesk/ws"
)

// registerHubCallbacks, tüm Hub callback'lerini register eder.
func registerHubCallbacks(hub *ws.Hub, svcs *Services) {
	// ─── Voice Callback'leri ───

	hub.SetVoiceCallbacks(
		func(userID, channelID string) {
			if err := svcs.Voice.Join(context.Background(), userID, channelID); err != nil {
				log.Printf("[voice] join error user=%s channel=%s: %v", userID, channelID, err)
			}
		},
		func(userID string) {
			svcs.Voice.Leave(userID)
		},
		func(userID string, isMuted, isDeafened *bool) {
			if err := svcs.Voice.UpdateState(userID, isMuted, isDeafened); err != nil {
				log.Printf("[voice] state update error user=%s: %v", userID, err)
			}
		},
	)

	// ─── Aktif Kanal Callback'i ───
	//
	// Client odaktaki kanalı bildirdiğinde okuma imleci otomatik ilerler —
	// kullanıcı kanala bakıyorsa mesajlar okunmuş sayılır.
	hub.SetActiveChannelCallback(func(userID, channelID string) {
		if err := svcs.Channel.SetActiveChannel(context.Background(), userID, channelID); err != nil {
			log.Printf("[presence] active channel error user=%s channel=%s: %v", userID, channelID, err)
		}
	})

	// ─── Disconnect Callback'i ───
	//
	// Kullanıcının SON bağlantısı koptuğunda tetiklenir (multi-tab:
	// tek tab kapanması tetiklemez). Aktif kanal imleci ve voice
	// state temizlenir.
	hub.SetDisconnectCallback(func(userID string) {
		svcs.Channel.HandleDisconnect(userID)
		svcs.Voice.HandleDisconnect(userID)
		log.Printf("[presence] user %s fully disconnected", userID)
	})
}
