package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MessageType, mesajın türünü temsil eder.
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system" // "x kanala katıldı" gibi otomatik mesajlar
)

// GroupWindow, ardışık iki mesajın "gruplanmış" sayılması için izin verilen
// maksimum zaman farkı. Gruplanan mesajlarda frontend yazar/avatar satırını
// tekrar göstermez. Bu kural sadece traversal'ı etkiler, storage'ı değil.
const GroupWindow = 5 * time.Minute

// Message, bir kanal mesajını temsil eder.
// DB'deki "messages" tablosunun Go karşılığı.
//
// Content, AuthorID ve CreatedAt oluşturulduktan sonra değişmez — bu
// çekirdekte mesaj düzenleme/silme yoktur, sadece reaction'lar mutasyona uğrar.
//
// Seq, kanal içi monoton artan sıra numarasıdır. Repository insert sırasında
// transaction içinde atar; listeleme her zaman seq ASC döner (FIFO garantisi).
type Message struct {
	ID        string      `json:"id"`
	ChannelID string      `json:"channel_id"`
	AuthorID  string      `json:"author_id"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Seq       int64       `json:"seq"`
	CreatedAt time.Time   `json:"created_at"`

	// Grouped, listeleme sırasında hesaplanır: bir önceki mesajla aynı yazar
	// ve aradaki süre GroupWindow'dan kısa ise true. DB'de saklanmaz.
	Grouped bool `json:"grouped"`

	Reactions   []ReactionGroup `json:"reactions"`
	Attachments []Attachment    `json:"attachments"`
	Mentions    []Mention       `json:"mentions"`
}

// GroupedWith, mesajın prev ile aynı görsel grupta olup olmadığını döner.
// Kural: aynı yazar ve timestamp farkı GroupWindow'un altında.
func (m *Message) GroupedWith(prev *Message) bool {
	if prev == nil {
		return false
	}
	if m.AuthorID != prev.AuthorID {
		return false
	}
	delta := m.CreatedAt.Sub(prev.CreatedAt)
	if delta < 0 {
		delta = -delta
	}
	return delta < GroupWindow
}

// AnnotateGroups, seq sırasındaki bir mesaj dilimi üzerinde Grouped
// alanlarını doldurur. İlk mesaj hiçbir zaman gruplanmaz.
func AnnotateGroups(messages []Message) {
	for i := range messages {
		if i == 0 {
			messages[i].Grouped = false
			continue
		}
		messages[i].Grouped = messages[i].GroupedWith(&messages[i-1])
	}
}

// Attachment, bir mesaja eklenmiş dosyayı temsil eder.
// MessageID nil ise upload tamamlanmış ama henüz bir mesaja bağlanmamıştır
// (pending) — pending attachment'lar mesaj akışında görünmez.
type Attachment struct {
	ID         string    `json:"id"`
	MessageID  *string   `json:"message_id"`
	Filename   string    `json:"filename"`
	FileURL    string    `json:"file_url"`
	MimeType   *string   `json:"mime_type"` // "image/png", "application/pdf" vb.
	FileSize   *int64    `json:"file_size"` // Byte cinsinden
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// MessagePage, cursor-based pagination sonucu.
// "bu seq'ten önceki N mesajı getir" şeklinde çalışır — yeni mesaj
// eklendiğinde sayfa kayması olmaz.
type MessagePage struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"`
}

// CreateMessageRequest, yeni mesaj gönderme isteği.
//
// Mentions, composer'ın commit anında sabitlediği (pin'lediği) mention
// kayıtlarıdır: directory id commit anında çözülmüştür, display name sadece
// görüntüleme içindir. Send-time tokenizer bu pin'leri byte aralıklarıyla
// eşleştirir; pin'lenmemiş çıplak token'lar directory lookup'a düşer.
type CreateMessageRequest struct {
	Content       string         `json:"content"`
	Mentions      []MentionInput `json:"mentions"`
	AttachmentIDs []string       `json:"attachment_ids"`
}

// Validate, CreateMessageRequest'in geçerli olup olmadığını kontrol eder.
// Sadece attachment taşıyan mesajlarda content boş olabilir —
// "içerik veya attachment'tan en az biri" kuralı service katmanında kontrol edilir.
func (r *CreateMessageRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if utf8.RuneCountInString(r.Content) > 2000 {
		return fmt.Errorf("message content must be at most 2000 characters")
	}
	if len(r.AttachmentIDs) > 10 {
		return fmt.Errorf("a message can carry at most 10 attachments")
	}
	return nil
}
