// Package email, uygulama genelinde email gönderimi için soyutlama katmanı sağlar.
//
// EmailSender interface'i ile gönderim detayları soyutlanır (Dependency Inversion).
// Şu anki implementasyon Resend API kullanır. İleride farklı bir sağlayıcıya
// geçmek için sadece yeni bir implementasyon yazıp constructor'da değiştirmek yeterli.
//
// Bu paket dışarıya iki şey sunar:
// 1. EmailSender interface — service'ler buna bağımlı olur
// 2. NewResendSender constructor — main.go'da wire-up için
package email

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v3"
)

// EmailSender, email gönderimi için interface.
// Service katmanı bu interface'e bağımlıdır, concrete Resend implementasyonuna değil.
type EmailSender interface {
	// SendMentionNotification, çevrimdışı bir kullanıcıya bir mesajda
	// etiketlendiğini bildiren email gönderir.
	// authorName: mesajı yazan, channelName: kanal adı, preview: içerik önizlemesi.
	SendMentionNotification(ctx context.Context, toEmail, authorName, channelName, channelID, preview string) error
}

// resendSender, Resend API ile email gönderen EmailSender implementasyonu.
type resendSender struct {
	client    *resend.Client
	fromEmail string // Gönderici adresi (ör: noreply@opsdesk.app)
	appURL    string // Uygulamanın public URL'i (ör: https://app.opsdesk.app)
}

// NewResendSender, Resend API client'ı ile yeni bir EmailSender oluşturur.
//
// apiKey: Resend dashboard'dan alınan API key (re_xxxxxxxx formatında).
// fromEmail: Gönderici adresi — Resend'de doğrulanmış domain altında olmalı.
// appURL: Kanal linklerinde kullanılan public URL.
func NewResendSender(apiKey, fromEmail, appURL string) EmailSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
	}
}

// SendMentionNotification, mention bildirimi email'i gönderir.
//
// Link format: {appURL}/channels/{channelID}
// Önizleme ve isimler kullanıcı girdisi olduğu için HTML escape edilir.
func (s *resendSender) SendMentionNotification(ctx context.Context, toEmail, authorName, channelName, channelID, preview string) error {
	channelLink := fmt.Sprintf("%s/channels/%s", s.appURL, channelID)

	const maxPreview = 140
	runes := []rune(preview)
	if len(runes) > maxPreview {
		preview = string(runes[:maxPreview]) + "…"
	}

	safeAuthor := html.EscapeString(authorName)
	safeChannel := html.EscapeString(channelName)
	safePreview := html.EscapeString(preview)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#1a1a2e;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#1a1a2e;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#16213e;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#e2e8f0;font-size:24px;margin:0 0 8px 0;">opsdesk</h1>
              <h2 style="color:#e2e8f0;font-size:18px;margin:0 0 24px 0;">%s mentioned you in #%s</h2>
              <p style="color:#94a3b8;font-size:15px;line-height:1.6;margin:0 0 24px 0;">
                %s
              </p>
              <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;">
                <tr>
                  <td style="background-color:#6366f1;border-radius:6px;padding:12px 32px;">
                    <a href="%s" style="color:#ffffff;text-decoration:none;font-size:15px;font-weight:600;">
                      Open Channel
                    </a>
                  </td>
                </tr>
              </table>
              <p style="color:#64748b;font-size:13px;line-height:1.6;margin:0;">
                You received this email because you were mentioned while offline.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, safeAuthor, safeChannel, safePreview, channelLink)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("opsdesk <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: fmt.Sprintf("%s mentioned you in #%s", authorName, channelName),
		Html:    body,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send mention notification email: %w", err)
	}

	return nil
}
