package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/repository"
	"github.com/akinalp/opsdesk/ws"
)

// ─── ISP Interface'leri ───
//
// Interface Segregation Principle: servis sadece ihtiyacı olan metotlara
// bağımlı olur, tüm interface'e değil. Bu sayede circular dependency
// oluşmaz ve test edilebilirlik artar.

// VoiceRosterProvider, kanal listesine voice roster kopyası eklemek için
// minimal interface. VoiceService bunu implicit olarak karşılar.
type VoiceRosterProvider interface {
	ChannelParticipantIDs(channelID string) []string
}

// VoiceChannelCleaner, kanal silindiğinde voice state temizliği için
// minimal interface.
type VoiceChannelCleaner interface {
	ClearChannel(channelID string)
}

// ChannelService, kanal yaşam döngüsü iş mantığı interface'i.
type ChannelService interface {
	// CreateChannel, yeni kanal oluşturur ve broadcast eder.
	// Boş/sadece boşluk isim → pkg.ErrInvalidName.
	CreateChannel(ctx context.Context, req *models.CreateChannelRequest, createdBy string) (*models.Channel, error)

	GetChannel(ctx context.Context, id string) (*models.Channel, error)

	// ListChannels, tüm kanalları isteği yapan kullanıcıya göre zenginleştirir:
	// son mesaj önizlemesi, okunmamış sayısı ve voice roster kopyası.
	ListChannels(ctx context.Context, userID string) ([]models.Channel, error)

	// UpdateChannel, isim/açıklama/katılımcı günceller.
	// Type değişikliği isteği → pkg.ErrInvalidTransition.
	UpdateChannel(ctx context.Context, id string, req *models.UpdateChannelRequest) (*models.Channel, error)

	// DeleteChannel, kanal ve bağlı tüm veriyi siler (FK cascade),
	// voice state'i temizler ve aktif kanalı silinen kanal olan
	// kullanıcıların imlecini sıfırlar.
	DeleteChannel(ctx context.Context, id string) error

	// SetActiveChannel, kullanıcının odaktaki kanalını kaydeder.
	// Boş channelID geçerlidir — hiçbir kanala bakmıyor demektir.
	SetActiveChannel(ctx context.Context, userID, channelID string) error

	// GetActiveChannel, kullanıcının odaktaki kanalını döner ("" = yok).
	GetActiveChannel(userID string) string

	// MarkRead, okuma imlecini verilen seq'e ilerletir. seq <= 0 ise
	// kanalın son seq'ine kadar her şey okunmuş sayılır.
	MarkRead(ctx context.Context, userID, channelID string, seq int64) error

	// HandleDisconnect, kullanıcının son WS bağlantısı koptuğunda çağrılır.
	HandleDisconnect(userID string)
}

type channelService struct {
	channelRepo   repository.ChannelRepository
	messageRepo   repository.MessageRepository
	readStateRepo repository.ReadStateRepository
	voiceRoster   VoiceRosterProvider
	voiceCleaner  VoiceChannelCleaner
	hub           ws.EventPublisher

	// activeChannels: userID → odaktaki kanal ID.
	// Geçicidir — WS bağlantısıyla yaşar, DB'ye yazılmaz.
	activeMu       sync.RWMutex
	activeChannels map[string]string
}

// NewChannelService, constructor injection ile yeni ChannelService oluşturur.
// voiceRoster ve voiceCleaner nil olabilir (testlerde).
func NewChannelService(
	channelRepo repository.ChannelRepository,
	messageRepo repository.MessageRepository,
	readStateRepo repository.ReadStateRepository,
	voiceRoster VoiceRosterProvider,
	voiceCleaner VoiceChannelCleaner,
	hub ws.EventPublisher,
) ChannelService {
	return &channelService{
		channelRepo:    channelRepo,
		messageRepo:    messageRepo,
		readStateRepo:  readStateRepo,
		voiceRoster:    voiceRoster,
		voiceCleaner:   voiceCleaner,
		hub:            hub,
		activeChannels: make(map[string]string),
	}
}

func (s *channelService) CreateChannel(ctx context.Context, req *models.CreateChannelRequest, createdBy string) (*models.Channel, error) {
	// Boş isim ayrı bir sentinel ile raporlanır — console bu durumda
	// inline form hatası gösterir, generic 400 banner'ı değil.
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: channel name cannot be empty", pkg.ErrInvalidName)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	channel := &models.Channel{
		Name:            req.Name,
		Type:            models.ChannelType(req.Type),
		Participants:    req.Participants,
		MaxParticipants: req.MaxParticipants,
		CreatedBy:       createdBy,
	}
	if req.Description != "" {
		channel.Description = &req.Description
	}

	if err := s.channelRepo.Create(ctx, channel); err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpChannelCreate, Data: channel})
	log.Printf("[channel] created: id=%s name=%q type=%s", channel.ID, channel.Name, channel.Type)

	return channel, nil
}

func (s *channelService) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	return s.channelRepo.GetByID(ctx, id)
}

// ListChannels, üç ayrı kaynaktan tek bir zenginleştirilmiş liste kurar:
// 1. channels tablosu (kalıcı)
// 2. son mesaj + okunmamış sayısı (kalıcı, kullanıcıya göre türetilmiş)
// 3. voice roster (in-memory, bilgi amaçlı kopya)
func (s *channelService) ListChannels(ctx context.Context, userID string) ([]models.Channel, error) {
	channels, err := s.channelRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return []models.Channel{}, nil
	}

	ids := make([]string, len(channels))
	for i := range channels {
		ids[i] = channels[i].ID
	}

	latest, err := s.messageRepo.GetLatestByChannelIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	unread, err := s.readStateRepo.GetUnreadCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range channels {
		ch := &channels[i]
		ch.LastMessage = latest[ch.ID]
		ch.UnreadCount = unread[ch.ID]
		if s.voiceRoster != nil && ch.Type == models.ChannelTypeVoice {
			ch.ConnectedUsers = s.voiceRoster.ChannelParticipantIDs(ch.ID)
		}
	}

	return channels, nil
}

func (s *channelService) UpdateChannel(ctx context.Context, id string, req *models.UpdateChannelRequest) (*models.Channel, error) {
	// Tür, oluşturma anından sonra değişmez. İstek type alanı taşıyorsa
	// kısmen uygulamak yerine bütünüyle reddedilir.
	if req.Type != nil {
		return nil, fmt.Errorf("%w: channel type cannot be changed after creation", pkg.ErrInvalidTransition)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	channel, err := s.channelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.Description != nil {
		if *req.Description == "" {
			channel.Description = nil
		} else {
			channel.Description = req.Description
		}
	}
	if req.Participants != nil {
		channel.Participants = models.NormalizeParticipants(*req.Participants)
	}

	if err := s.channelRepo.Update(ctx, channel); err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpChannelUpdate, Data: channel})

	return channel, nil
}

func (s *channelService) DeleteChannel(ctx context.Context, id string) error {
	// Varlık kontrolü önce — yoksa 404, cascade'e hiç girilmez.
	if _, err := s.channelRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.channelRepo.Delete(ctx, id); err != nil {
		return err
	}

	// Voice roster in-memory — FK cascade onu temizleyemez.
	if s.voiceCleaner != nil {
		s.voiceCleaner.ClearChannel(id)
	}

	// Aktif kanalı silinen kanal olan kullanıcıların imleci sıfırlanır;
	// console channel_delete event'ini alınca kendi fallback kanalını seçer.
	s.activeMu.Lock()
	for userID, channelID := range s.activeChannels {
		if channelID == id {
			delete(s.activeChannels, userID)
		}
	}
	s.activeMu.Unlock()

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpChannelDelete, Data: map[string]string{"id": id}})
	log.Printf("[channel] deleted: id=%s", id)

	return nil
}

func (s *channelService) SetActiveChannel(ctx context.Context, userID, channelID string) error {
	if channelID != "" {
		if _, err := s.channelRepo.GetByID(ctx, channelID); err != nil {
			return err
		}
	}

	s.activeMu.Lock()
	if channelID == "" {
		delete(s.activeChannels, userID)
	} else {
		s.activeChannels[userID] = channelID
	}
	s.activeMu.Unlock()

	// Odaklanılan kanal anında okundu sayılır — unread badge oturumlar
	// arası tutarlı kalsın diye watermark da ilerletilir.
	if channelID != "" {
		if err := s.MarkRead(ctx, userID, channelID, 0); err != nil {
			log.Printf("[channel] mark read on focus failed: user=%s channel=%s: %v", userID, channelID, err)
		}
	}

	return nil
}

func (s *channelService) GetActiveChannel(userID string) string {
	s.activeMu.RLock()
	defer s.activeMu.RUnlock()
	return s.activeChannels[userID]
}

func (s *channelService) MarkRead(ctx context.Context, userID, channelID string, seq int64) error {
	if _, err := s.channelRepo.GetByID(ctx, channelID); err != nil {
		return err
	}

	if seq <= 0 {
		maxSeq, err := s.messageRepo.GetMaxSeq(ctx, channelID)
		if err != nil {
			return err
		}
		seq = maxSeq
	}

	state := &models.ReadState{UserID: userID, ChannelID: channelID, LastReadSeq: seq}
	if err := s.readStateRepo.Upsert(ctx, state); err != nil {
		return err
	}

	// Sadece aynı kullanıcının diğer sekmelerine — başkasını ilgilendirmez.
	s.hub.BroadcastToUser(userID, ws.Event{
		Op:   ws.OpReadStateUpdate,
		Data: ws.ReadStateUpdateData{ChannelID: channelID, LastReadSeq: seq},
	})

	return nil
}

// HandleDisconnect, kopan kullanıcının geçici state'ini temizler.
// Okuma imleci kalıcıdır, ona dokunulmaz.
func (s *channelService) HandleDisconnect(userID string) {
	s.activeMu.Lock()
	delete(s.activeChannels, userID)
	s.activeMu.Unlock()
}
