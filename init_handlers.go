// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin" dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/akinalp/opsdesk/config"
	"github.com/akinalp/opsdesk/handlers"
	"github.com/akinalp/opsdesk/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Channel  *handlers.ChannelHandler
	Message  *handlers.MessageHandler
	Reaction *handlers.ReactionHandler
	Voice    *handlers.VoiceHandler
	Suggest  *handlers.SuggestHandler
	Upload   *handlers.UploadHandler
	WS       *ws.Handler
}

// initHandlers, tüm handler'ları service ve rate limiter dependency'leri ile oluşturur.
func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		Channel:  handlers.NewChannelHandler(svcs.Channel),
		Message:  handlers.NewMessageHandler(svcs.Message, limiters.Message),
		Reaction: handlers.NewReactionHandler(svcs.Reaction),
		Voice:    handlers.NewVoiceHandler(svcs.Voice),
		Suggest:  handlers.NewSuggestHandler(svcs.Suggest),
		Upload:   handlers.NewUploadHandler(svcs.Upload, cfg.Upload.MaxSize),
		WS:       ws.NewHandler(hub, svcs.Token, svcs.Voice),
	}
}
