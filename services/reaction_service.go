package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/repository"
	"github.com/akinalp/opsdesk/ws"

	"github.com/akinalp/opsdesk/models"
)

// MaxEmojiLength, bir emoji string'inin maksimum karakter uzunluğu.
// Çoğu emoji 1-2 codepoint'tir ama bazı bileşik emojiler (aile, bayrak vb.)
// 10+ codepoint olabilir. 32 karakter geniş bir güvenlik marjı sağlar.
const MaxEmojiLength = 32

// ReactionService, emoji reaction iş mantığı interface'i.
//
// Add ve Remove idempotenttir: var olanı tekrar eklemek veya olmayanı
// silmek hata değildir ve sayaçları değiştirmez. İki sekmeden aynı anda
// gelen çift tıklama sayacı asla iki kez artıramaz.
type ReactionService interface {
	AddReaction(ctx context.Context, messageID, userID, emoji string) error
	RemoveReaction(ctx context.Context, messageID, userID, emoji string) error
}

type reactionService struct {
	reactionRepo repository.ReactionRepository
	messageRepo  repository.MessageGetter
	hub          ws.EventPublisher
}

// NewReactionService, constructor.
// messageRepo: işlem öncesi mesajın varlığını ve channel_id'sini doğrulamak için.
// hub: reaction değişikliklerini broadcast etmek için.
func NewReactionService(
	reactionRepo repository.ReactionRepository,
	messageRepo repository.MessageGetter,
	hub ws.EventPublisher,
) ReactionService {
	return &reactionService{
		reactionRepo: reactionRepo,
		messageRepo:  messageRepo,
		hub:          hub,
	}
}

func (s *reactionService) AddReaction(ctx context.Context, messageID, userID, emoji string) error {
	if err := validateEmoji(emoji); err != nil {
		return err
	}

	if _, err := s.messageRepo.GetByID(ctx, messageID); err != nil {
		return err
	}

	reaction := &models.Reaction{MessageID: messageID, UserID: userID, Emoji: emoji}
	changed, err := s.reactionRepo.Add(ctx, reaction)
	if err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}

	// Değişiklik yoksa broadcast da yok — client'lar zaten güncel.
	if changed {
		return s.broadcastReactions(ctx, messageID)
	}
	return nil
}

func (s *reactionService) RemoveReaction(ctx context.Context, messageID, userID, emoji string) error {
	if err := validateEmoji(emoji); err != nil {
		return err
	}

	if _, err := s.messageRepo.GetByID(ctx, messageID); err != nil {
		return err
	}

	changed, err := s.reactionRepo.Remove(ctx, messageID, userID, emoji)
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}

	if changed {
		return s.broadcastReactions(ctx, messageID)
	}
	return nil
}

// broadcastReactions, mesajın güncel reaction listesini tüm client'lara gönderir.
// Delta değil tam liste gönderilir — client'ta drift birikmez.
func (s *reactionService) broadcastReactions(ctx context.Context, messageID string) error {
	groups, err := s.reactionRepo.GetByMessageID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to load reactions for broadcast: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{
		Op: ws.OpReactionUpdate,
		Data: map[string]any{
			"message_id": messageID,
			"reactions":  groups,
		},
	})

	return nil
}

func validateEmoji(emoji string) error {
	if emoji == "" {
		return fmt.Errorf("%w: emoji is required", pkg.ErrBadRequest)
	}
	if utf8.RuneCountInString(emoji) > MaxEmojiLength {
		return fmt.Errorf("%w: emoji too long", pkg.ErrBadRequest)
	}
	return nil
}
