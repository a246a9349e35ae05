// VoiceService sorumluluları:
// 1. LiveKit token generate etme (ses kanalına katılım için)
// 2. In-memory voice roster yönetimi (kim hangi kanalda, mute/deafen)
// 3. State değişikliklerini WS Hub üzerinden broadcast etme
//
// Neden in-memory (DB değil)?
// Voice roster geçicidir — sunucu yeniden başlatıldığında tüm WS
// bağlantıları da düşer. DB'ye yazmak gereksiz I/O olur.
//
// Roster yaşam döngüsü: kayıt ilk join'de lazy oluşturulur; son kullanıcı
// ayrıldığında roster boşalır ama kayıt kanal silinene kadar yaşar.
// Kanal empty↔active arasında serbestçe gidip gelir.
package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/akinalp/opsdesk/config"
	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/ws"

	// LiveKit Go SDK — `auth` paketi JWT token oluşturma API'sini sağlar.
	"github.com/livekit/protocol/auth"
)

// ChannelGetter, kanal bilgisi almak için minimal interface.
// repository.ChannelRepository bu interface'i implicit olarak karşılar.
type ChannelGetter interface {
	GetByID(ctx context.Context, id string) (*models.Channel, error)
}

// VoiceService, ses kanalı operasyonları için iş mantığı interface'i.
type VoiceService interface {
	// GenerateToken, LiveKit JWT oluşturur. Kanal voice tipinde olmalı.
	GenerateToken(ctx context.Context, userID, displayName, channelID string) (*models.VoiceTokenResponse, error)

	// Join, kullanıcıyı ses kanalına kaydeder ve broadcast eder.
	// Idempotent: zaten bu kanaldaysa no-op. Başka kanaldaysa önce
	// oradan çıkarılır (bir kullanıcı aynı anda tek kanalda olabilir).
	Join(ctx context.Context, userID, channelID string) error

	// Leave, kullanıcıyı mevcut ses kanalından çıkarır.
	// Kanalda değilse no-op.
	Leave(userID string)

	// UpdateState, mute/deafen durumunu günceller (nil alan değişmez).
	UpdateState(userID string, isMuted, isDeafened *bool) error

	// ChannelState, bir ses kanalının anlık roster'ını döner.
	ChannelState(ctx context.Context, channelID string) (*models.VoiceChannelState, error)

	// ChannelParticipantIDs, kanaldaki kullanıcı ID'lerini döner
	// (kanal listesi zenginleştirmesi için).
	ChannelParticipantIDs(channelID string) []string

	// AllVoiceStates, tüm aktif ses durumlarını döner (WS connect sync için).
	AllVoiceStates() []ws.VoiceStateItem

	// ClearChannel, kanal silindiğinde roster kaydını tamamen kaldırır.
	ClearChannel(channelID string)

	// HandleDisconnect, WS bağlantısı kopan kullanıcıyı voice'tan çıkarır.
	HandleDisconnect(userID string)
}

// channelRoster, tek bir ses kanalının in-memory durumu.
// participants set-keyed tutulur — üyelik kontrolü ve çıkarma O(1).
type channelRoster struct {
	participants map[string]*models.VoiceParticipant
}

type voiceService struct {
	mu sync.RWMutex

	// rosters: channelID → roster. Boş roster silinmez; ClearChannel siler.
	rosters map[string]*channelRoster

	// userChannel: userID → bağlı olduğu kanal. "Başka kanaldaysa önce
	// çıkar" kuralı bu ters index ile tüm roster'ları taramadan uygulanır.
	userChannel map[string]string

	channelGetter ChannelGetter
	hub           ws.EventPublisher
	livekitCfg    config.LiveKitConfig
}

// NewVoiceService, constructor injection ile yeni VoiceService oluşturur.
func NewVoiceService(channelGetter ChannelGetter, hub ws.EventPublisher, livekitCfg config.LiveKitConfig) VoiceService {
	return &voiceService{
		rosters:       make(map[string]*channelRoster),
		userChannel:   make(map[string]string),
		channelGetter: channelGetter,
		hub:           hub,
		livekitCfg:    livekitCfg,
	}
}

// ─── Token Generation ───

func (s *voiceService) GenerateToken(ctx context.Context, userID, displayName, channelID string) (*models.VoiceTokenResponse, error) {
	channel, err := s.channelGetter.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.Type != models.ChannelTypeVoice {
		return nil, fmt.Errorf("%w: not a voice channel", pkg.ErrBadRequest)
	}

	// auth.NewAccessToken: LiveKit'in JWT builder'ı.
	// API key + secret ile imzalanır, client bununla LiveKit'e bağlanır.
	at := auth.NewAccessToken(s.livekitCfg.APIKey, s.livekitCfg.APISecret)

	canPublish := true
	canSubscribe := true
	grant := &auth.VideoGrant{
		RoomJoin:     true,
		Room:         channelID, // LiveKit room name = channel ID
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	}

	at.AddGrant(grant).
		SetIdentity(userID).
		SetName(displayName).
		SetValidFor(24 * time.Hour) // Uzun validite — LiveKit disconnect'i kendisi yönetir

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("failed to generate livekit token: %w", err)
	}

	return &models.VoiceTokenResponse{
		Token:     token,
		URL:       s.livekitCfg.URL,
		ChannelID: channelID,
	}, nil
}

// ─── Join / Leave ───

func (s *voiceService) Join(ctx context.Context, userID, channelID string) error {
	channel, err := s.channelGetter.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if channel.Type != models.ChannelTypeVoice {
		return fmt.Errorf("%w: not a voice channel", pkg.ErrBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotent: zaten bu kanaldaysa hiçbir şey değişmez, broadcast da yok.
	if s.userChannel[userID] == channelID {
		return nil
	}

	roster := s.rosters[channelID]
	if roster == nil {
		roster = &channelRoster{participants: make(map[string]*models.VoiceParticipant)}
		s.rosters[channelID] = roster
	}

	// Kapasite kontrolü (0 = sınırsız).
	if channel.MaxParticipants > 0 && len(roster.participants) >= channel.MaxParticipants {
		return fmt.Errorf("%w: voice channel is full", pkg.ErrBadRequest)
	}

	// Başka kanaldaysa önce oradan çıkar.
	if oldChannelID, ok := s.userChannel[userID]; ok {
		s.removeLocked(userID, oldChannelID)
	}

	roster.participants[userID] = &models.VoiceParticipant{
		UserID:   userID,
		JoinedAt: time.Now(),
	}
	s.userChannel[userID] = channelID

	s.hub.BroadcastToAll(ws.Event{
		Op: ws.OpVoiceStateUpdate,
		Data: ws.VoiceStateUpdateBroadcast{
			UserID:    userID,
			ChannelID: channelID,
			Action:    "join",
		},
	})
	log.Printf("[voice] join: user=%s channel=%s participants=%d",
		userID, channelID, len(roster.participants))

	return nil
}

func (s *voiceService) Leave(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channelID, ok := s.userChannel[userID]
	if !ok {
		return
	}

	s.removeLocked(userID, channelID)
	log.Printf("[voice] leave: user=%s channel=%s", userID, channelID)
}

// removeLocked, kullanıcıyı roster'dan çıkarır ve leave broadcast'i yapar.
// s.mu yazma kilidi altında çağrılmalıdır.
func (s *voiceService) removeLocked(userID, channelID string) {
	if roster, ok := s.rosters[channelID]; ok {
		delete(roster.participants, userID)
		// Roster boşalsa bile kayıt silinmez — kanal empty durumuna döner,
		// tekrar join gelirse aynı kayıt yeniden dolar.
	}
	delete(s.userChannel, userID)

	s.hub.BroadcastToAll(ws.Event{
		Op: ws.OpVoiceStateUpdate,
		Data: ws.VoiceStateUpdateBroadcast{
			UserID:    userID,
			ChannelID: channelID,
			Action:    "leave",
		},
	})
}

func (s *voiceService) UpdateState(userID string, isMuted, isDeafened *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	channelID, ok := s.userChannel[userID]
	if !ok {
		return fmt.Errorf("%w: user is not in a voice channel", pkg.ErrBadRequest)
	}

	participant := s.rosters[channelID].participants[userID]
	if isMuted != nil {
		participant.IsMuted = *isMuted
	}
	if isDeafened != nil {
		participant.IsDeafened = *isDeafened
	}

	s.hub.BroadcastToAll(ws.Event{
		Op: ws.OpVoiceStateUpdate,
		Data: ws.VoiceStateUpdateBroadcast{
			UserID:     userID,
			ChannelID:  channelID,
			IsMuted:    participant.IsMuted,
			IsDeafened: participant.IsDeafened,
			Action:     "update",
		},
	})

	return nil
}

// ─── Sorgular ───

func (s *voiceService) ChannelState(ctx context.Context, channelID string) (*models.VoiceChannelState, error) {
	if _, err := s.channelGetter.GetByID(ctx, channelID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state := &models.VoiceChannelState{
		ChannelID:      channelID,
		ConnectedUsers: []models.VoiceParticipant{},
	}

	if roster, ok := s.rosters[channelID]; ok {
		for _, p := range roster.participants {
			state.ConnectedUsers = append(state.ConnectedUsers, *p)
		}
	}
	state.IsActive = len(state.ConnectedUsers) > 0

	return state, nil
}

func (s *voiceService) ChannelParticipantIDs(channelID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roster, ok := s.rosters[channelID]
	if !ok || len(roster.participants) == 0 {
		return nil
	}

	ids := make([]string, 0, len(roster.participants))
	for userID := range roster.participants {
		ids = append(ids, userID)
	}
	return ids
}

func (s *voiceService) AllVoiceStates() []ws.VoiceStateItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []ws.VoiceStateItem
	for channelID, roster := range s.rosters {
		for _, p := range roster.participants {
			items = append(items, ws.VoiceStateItem{
				UserID:     p.UserID,
				ChannelID:  channelID,
				IsMuted:    p.IsMuted,
				IsDeafened: p.IsDeafened,
			})
		}
	}
	return items
}

// ─── Temizlik ───

func (s *voiceService) ClearChannel(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roster, ok := s.rosters[channelID]
	if !ok {
		return
	}

	// Kanaldaki herkes için leave broadcast'i — client'lar LiveKit
	// room'undan kendileri ayrılır.
	for userID := range roster.participants {
		delete(s.userChannel, userID)
		s.hub.BroadcastToAll(ws.Event{
			Op: ws.OpVoiceStateUpdate,
			Data: ws.VoiceStateUpdateBroadcast{
				UserID:    userID,
				ChannelID: channelID,
				Action:    "leave",
			},
		})
	}

	delete(s.rosters, channelID)
	log.Printf("[voice] channel cleared: %s", channelID)
}

func (s *voiceService) HandleDisconnect(userID string) {
	s.Leave(userID)
}
