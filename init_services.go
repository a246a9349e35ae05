// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu repository interface'lerini ve diğer
// dependency'leri constructor injection ile alır.
//
// ÖNEMLİ sıralama kuralları:
// 1. voiceService → channelService'den ÖNCE (roster + cleaner dependency)
// 2. suggestService → resolver'dan ÖNCE (mention.Lookup dependency)
// 3. voiceService ve channelService → Hub callback'lerinden ÖNCE
package main

import (
	"log"
	"time"

	"github.com/akinalp/opsdesk/config"
	"github.com/akinalp/opsdesk/mention"
	"github.com/akinalp/opsdesk/pkg/email"
	"github.com/akinalp/opsdesk/pkg/ratelimit"
	"github.com/akinalp/opsdesk/services"
	"github.com/akinalp/opsdesk/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Token    services.TokenService
	Suggest  services.SuggestService
	Voice    services.VoiceService
	Channel  services.ChannelService
	Message  services.MessageService
	Reaction services.ReactionService
	Upload   services.UploadService
}

// RateLimiters, rate limiter instance'larını tutan container.
type RateLimiters struct {
	Message *ratelimit.MessageRateLimiter
}

// initServices, tüm service'leri ve rate limiter'ları oluşturur.
//
// Sıralama kritiktir — bkz. dosya başı yorum.
// hub, service'ler arası paylaşılan broadcast dependency'sidir.
func initServices(repos *Repositories, hub ws.EventPublisher, cfg *config.Config) (*Services, *RateLimiters) {
	// ─── Sıralama-kritik service'ler ───

	tokenService := services.NewTokenService(cfg.JWT.Secret)

	// SuggestService — mention.Resolver'dan ÖNCE (Lookup dependency).
	// Aynı instance hem Directory (suggestion arama) hem Lookup
	// (gönderim anı isim çözümleme) interface'lerini karşılar.
	suggestService := services.NewSuggestService(repos.Directory)
	resolver := mention.NewResolver(suggestService)

	// VoiceService — channelService ve Hub callback'lerinden ÖNCE.
	// channelService roster (ConnectedUsers) ve cleaner (kanal silme)
	// olarak voiceService'i kullanır.
	voiceService := services.NewVoiceService(repos.Channel, hub, cfg.LiveKit)

	channelService := services.NewChannelService(
		repos.Channel, repos.Message, repos.ReadState,
		voiceService, voiceService, hub,
	)

	// ─── Email service (opsiyonel) ───
	var emailSender email.EmailSender
	if cfg.Email.ResendAPIKey != "" && cfg.Email.FromEmail != "" && cfg.Email.AppURL != "" {
		emailSender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
		log.Printf("[main] email service enabled (from=%s)", cfg.Email.FromEmail)
	} else {
		log.Println("[main] email service disabled (RESEND_API_KEY, RESEND_FROM or APP_URL not set)")
	}

	// ─── Diğer service'ler (sıralama bağımsız) ───
	messageService := services.NewMessageService(
		repos.Message, repos.Channel, repos.Mention, repos.Reaction,
		repos.Attachment, repos.Directory, resolver, emailSender, hub,
	)
	reactionService := services.NewReactionService(repos.Reaction, repos.Message, hub)
	uploadService := services.NewUploadService(repos.Attachment, cfg.Upload.Dir, cfg.Upload.MaxSize)

	// ─── Rate Limiters ───
	messageLimiter := ratelimit.NewMessageRateLimiter(5, 5*time.Second, 15*time.Second)

	svcs := &Services{
		Token:    tokenService,
		Suggest:  suggestService,
		Voice:    voiceService,
		Channel:  channelService,
		Message:  messageService,
		Reaction: reactionService,
		Upload:   uploadService,
	}

	limiters := &RateLimiters{
		Message: messageLimiter,
	}

	return svcs, limiters
}
