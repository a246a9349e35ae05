package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/akinalp/opsdesk/mention"
	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/pkg/email"
	"github.com/akinalp/opsdesk/repository"
	"github.com/akinalp/opsdesk/ws"
)

// MessageService, mesaj gönderme/listeleme/arama iş mantığı interface'i.
type MessageService interface {
	// SendMessage, mesajı kalıcılaştırır, mention'ları çözer, bekleyen
	// attachment'ları bağlar ve message_create broadcast'i yapar.
	// Çevrimdışı etiketlenen kullanıcılara arka planda email bildirimi gider.
	SendMessage(ctx context.Context, channelID, authorID, authorName string, req *models.CreateMessageRequest) (*models.Message, error)

	// ListMessages, seq ASC sıralı, reaction/attachment/mention ile
	// zenginleştirilmiş ve grouping işaretlenmiş bir sayfa döner.
	// beforeSeq > 0 ise o seq'ten eski mesajlar gelir (geçmişe kaydırma).
	ListMessages(ctx context.Context, channelID string, limit int, beforeSeq int64) (*models.MessagePage, error)

	// SearchMessages, içerikte arama yapar. channelID boş = tüm kanallar.
	SearchMessages(ctx context.Context, channelID, query string, limit int) ([]models.Message, error)
}

type messageService struct {
	messageRepo    repository.MessageRepository
	channelRepo    repository.ChannelRepository
	mentionRepo    repository.MentionRepository
	reactionRepo   repository.ReactionRepository
	attachmentRepo repository.AttachmentRepository
	directoryRepo  repository.DirectoryRepository
	resolver       *mention.Resolver
	emailSender    email.EmailSender
	hub            ws.EventPublisher
}

// NewMessageService, constructor.
// emailSender nil olabilir — o durumda offline mention bildirimi atlanır.
func NewMessageService(
	messageRepo repository.MessageRepository,
	channelRepo repository.ChannelRepository,
	mentionRepo repository.MentionRepository,
	reactionRepo repository.ReactionRepository,
	attachmentRepo repository.AttachmentRepository,
	directoryRepo repository.DirectoryRepository,
	resolver *mention.Resolver,
	emailSender email.EmailSender,
	hub ws.EventPublisher,
) MessageService {
	return &messageService{
		messageRepo:    messageRepo,
		channelRepo:    channelRepo,
		mentionRepo:    mentionRepo,
		reactionRepo:   reactionRepo,
		attachmentRepo: attachmentRepo,
		directoryRepo:  directoryRepo,
		resolver:       resolver,
		emailSender:    emailSender,
		hub:            hub,
	}
}

// SendMessage akışı:
// 1. Request validation (uzunluk, attachment sayısı)
// 2. Kanal varlık kontrolü → pkg.ErrChannelNotFound
// 3. Mention çözümleme (pin'li + çıplak token'lar)
// 4. Mesaj insert (repository seq atar — FIFO garantisi)
// 5. Attachment claim → başarısızsa mesaj geri alınır, pkg.ErrUploadFailure
// 6. Mention kayıtları
// 7. WS broadcast + arka planda offline mention email'leri
func (s *messageService) SendMessage(ctx context.Context, channelID, authorID, authorName string, req *models.CreateMessageRequest) (*models.Message, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Content) == "" && len(req.AttachmentIDs) == 0 {
		return nil, fmt.Errorf("%w: message must have content or attachments", pkg.ErrBadRequest)
	}

	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	mentions, err := s.resolver.Resolve(ctx, req.Content, req.Mentions)
	if err != nil {
		return nil, err
	}
	// Resolver sıralı, sınır içi ve örtüşmesiz aralık üretir; persist
	// öncesi son kontrol bozuk bir aralığın DB'ye sızmasını engeller.
	if !mention.ValidateRanges(req.Content, mentions) {
		return nil, fmt.Errorf("%w: mention ranges out of bounds", pkg.ErrInternal)
	}

	msg := &models.Message{
		ChannelID: channelID,
		AuthorID:  authorID,
		Content:   req.Content,
		Type:      models.MessageTypeText,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if len(req.AttachmentIDs) > 0 {
		if err := s.attachmentRepo.Claim(ctx, msg.ID, req.AttachmentIDs); err != nil {
			// Claim başarısızsa mesaj attachment'sız yayınlanmaz —
			// yarım mesaj bırakmamak için insert geri alınır.
			if delErr := s.messageRepo.Delete(ctx, msg.ID); delErr != nil {
				log.Printf("[message] rollback failed for %s: %v", msg.ID, delErr)
			}
			return nil, err
		}
	}

	if err := s.mentionRepo.SaveMentions(ctx, msg.ID, mentions); err != nil {
		return nil, err
	}

	if err := s.hydrate(ctx, msg); err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpMessageCreate, Data: msg})
	log.Printf("[message] sent: channel=%s author=%s seq=%d mentions=%d",
		channelID, authorID, msg.Seq, len(mentions))

	// Email gönderimi yavaş olabilir — response'u bekletmemek için goroutine.
	// Request context'i response ile ölür; bağımsız timeout'lu context kullanılır.
	if s.emailSender != nil {
		go s.notifyOfflineMentions(channel, msg, authorID, authorName, mentions)
	}

	return msg, nil
}

func (s *messageService) ListMessages(ctx context.Context, channelID string, limit int, beforeSeq int64) (*models.MessagePage, error) {
	if _, err := s.channelRepo.GetByID(ctx, channelID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	// Repo seq DESC döner (en yeni N mesaj) — limit+1 ile bir fazlası
	// istenir, fazlalık varsa daha eski sayfa var demektir.
	messages, err := s.messageRepo.GetByChannelID(ctx, channelID, limit+1, beforeSeq)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	// DESC → ASC çevir: console mesajları eski→yeni render eder.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if err := s.hydrateAll(ctx, messages); err != nil {
		return nil, err
	}

	models.AnnotateGroups(messages)

	return &models.MessagePage{Messages: messages, HasMore: hasMore}, nil
}

func (s *messageService) SearchMessages(ctx context.Context, channelID, query string, limit int) ([]models.Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query cannot be empty", pkg.ErrBadRequest)
	}

	if channelID != "" {
		if _, err := s.channelRepo.GetByID(ctx, channelID); err != nil {
			return nil, err
		}
	}

	messages, err := s.messageRepo.Search(ctx, channelID, query, limit)
	if err != nil {
		return nil, err
	}

	if err := s.hydrateAll(ctx, messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// hydrate, tek bir mesaja reaction/attachment/mention ekler.
func (s *messageService) hydrate(ctx context.Context, msg *models.Message) error {
	single := []models.Message{*msg}
	if err := s.hydrateAll(ctx, single); err != nil {
		return err
	}
	*msg = single[0]
	return nil
}

// hydrateAll, bir mesaj dilimini üç toplu sorguyla zenginleştirir.
// Mesaj başına sorgu (N+1) yerine ID listesiyle tek round-trip.
func (s *messageService) hydrateAll(ctx context.Context, messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]string, len(messages))
	for i := range messages {
		ids[i] = messages[i].ID
	}

	reactions, err := s.reactionRepo.GetByMessageIDs(ctx, ids)
	if err != nil {
		return err
	}
	attachments, err := s.attachmentRepo.GetByMessageIDs(ctx, ids)
	if err != nil {
		return err
	}
	mentions, err := s.mentionRepo.GetByMessageIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range messages {
		m := &messages[i]
		m.Reactions = reactions[m.ID]
		if m.Reactions == nil {
			m.Reactions = []models.ReactionGroup{}
		}
		m.Attachments = attachments[m.ID]
		if m.Attachments == nil {
			m.Attachments = []models.Attachment{}
		}
		m.Mentions = mentions[m.ID]
		if m.Mentions == nil {
			m.Mentions = []models.Mention{}
		}
	}

	return nil
}

// notifyOfflineMentions, mesajda etiketlenen çevrimdışı kullanıcılara
// email bildirimi gönderir. Goroutine içinde çalışır — hatalar loglanır,
// mesaj gönderimini asla etkilemez.
func (s *messageService) notifyOfflineMentions(channel *models.Channel, msg *models.Message, authorID, authorName string, mentions []models.Mention) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	seen := make(map[string]bool)
	for _, m := range mentions {
		if m.Kind != models.MentionUser {
			continue
		}
		if m.TargetID == authorID || seen[m.TargetID] {
			continue
		}
		seen[m.TargetID] = true

		// Online kullanıcı event'i zaten WS'ten aldı — email gereksiz.
		if s.hub.IsUserOnline(m.TargetID) {
			continue
		}

		user, err := s.directoryRepo.GetUserByID(ctx, m.TargetID)
		if err != nil {
			log.Printf("[message] mention email lookup failed for %s: %v", m.TargetID, err)
			continue
		}
		if user.Email == nil || *user.Email == "" {
			continue
		}

		if err := s.emailSender.SendMentionNotification(
			ctx, *user.Email, authorName, channel.Name, channel.ID, msg.Content,
		); err != nil {
			log.Printf("[message] mention email to %s failed: %v", *user.Email, err)
		}
	}
}
