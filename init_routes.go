// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// Tek middleware chain helper'ı vardır:
//   - auth: JWT token doğrulaması (tüm endpoint'ler korumalıdır —
//     token'lar console'un SSO servisi tarafından üretilir)
package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/akinalp/opsdesk/middleware"
	"github.com/akinalp/opsdesk/services"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Route sıralama kuralı: Literal path'ler parametrik path'lerden ÖNCE
// tanımlanmalı. Örnek: "/api/messages/search" → "/api/messages/{id}"
// öncesinde, yoksa Go router "search" kelimesini bir id olarak yorumlar.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	tokenService services.TokenService,
	uploadDir string,
) {
	// ─── Middleware ───
	authMw := middleware.NewAuthMiddleware(tokenService)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}

	// Health check — tek public endpoint
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"opsdesk"}`)
	})

	// Channels
	mux.Handle("GET /api/channels", auth(h.Channel.List))
	mux.Handle("POST /api/channels", auth(h.Channel.Create))
	mux.Handle("GET /api/channels/{id}", auth(h.Channel.Get))
	mux.Handle("PATCH /api/channels/{id}", auth(h.Channel.Update))
	mux.Handle("DELETE /api/channels/{id}", auth(h.Channel.Delete))

	// Read state — okuma imlecini ilerletir (asla geri sarmaz)
	mux.Handle("POST /api/channels/{id}/read", auth(h.Channel.MarkRead))

	// Messages
	mux.Handle("GET /api/channels/{id}/messages", auth(h.Message.List))
	mux.Handle("POST /api/channels/{id}/messages", auth(h.Message.Create))
	mux.Handle("GET /api/messages/search", auth(h.Message.Search))

	// Reactions — PUT/DELETE idempotent'tir, toggle değil
	mux.Handle("PUT /api/messages/{id}/reactions", auth(h.Reaction.Add))
	mux.Handle("DELETE /api/messages/{id}/reactions", auth(h.Reaction.Remove))

	// Mention suggestions — composer'daki @/#/^ popup'ı için
	mux.Handle("GET /api/suggestions", auth(h.Suggest.Search))

	// Upload — iki fazlı akışın ilk adımı: dosya yüklenir, dönen
	// attachment id sonraki mesaj gönderiminde claim edilir
	mux.Handle("POST /api/uploads", auth(h.Upload.Upload))

	// Voice — LiveKit token alma ve kanal ses durumu sorgulama
	// (join/leave/mute işlemleri WebSocket üzerinden gider)
	mux.Handle("POST /api/voice/token", auth(h.Voice.Token))
	mux.Handle("GET /api/channels/{id}/voice", auth(h.Voice.State))

	// Static file serving — yüklenen dosyalara erişim
	//
	// http.StripPrefix: URL'den "/api/uploads/" kısmını çıkarır.
	// http.FileServer: Kalan path'i upload dizininde dosya olarak arar.
	//
	// Path traversal koruması: http.FileServer zaten ".." path'lerini
	// reddeder; ek olarak sadece düz dosya isimlerini kabul ediyoruz.
	uploadsHandler := http.StripPrefix("/api/uploads/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/") || strings.Contains(r.URL.Path, "\\") {
			http.NotFound(w, r)
			return
		}
		http.FileServer(http.Dir(uploadDir)).ServeHTTP(w, r)
	}))
	mux.Handle("GET /api/uploads/", uploadsHandler)

	// WebSocket — token query parameter ile authenticate edilir
	//
	// Neden auth middleware kullanmıyoruz?
	// WebSocket upgrade sırasında tarayıcılar custom HTTP header gönderemez.
	// Bu yüzden JWT token URL query parameter olarak gönderilir:
	//   ws://server/ws?token=JWT_TOKEN
	// WS handler kendi içinde token doğrulaması yapar.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
