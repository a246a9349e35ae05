// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Veritabanındaki bir tablonun Go karşılığıdır.
// Aynı zamanda API'den gelen/giden verilerin şeklini de belirler.
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ChannelType, kanalın türünü temsil eder.
// Go'da enum yerine typed constant kullanılır.
type ChannelType string

const (
	ChannelTypePublic  ChannelType = "public"
	ChannelTypePrivate ChannelType = "private"
	ChannelTypeVoice   ChannelType = "voice"
	ChannelTypeDirect  ChannelType = "direct"
	ChannelTypeGroup   ChannelType = "group"
)

// Valid, bilinen bir kanal türü olup olmadığını kontrol eder.
func (t ChannelType) Valid() bool {
	switch t {
	case ChannelTypePublic, ChannelTypePrivate, ChannelTypeVoice,
		ChannelTypeDirect, ChannelTypeGroup:
		return true
	}
	return false
}

// Channel, bir mesajlaşma kanalını temsil eder.
// DB'deki "channels" tablosunun Go karşılığı.
//
// Type oluşturma anından sonra değişmez — güncelleme isteğinde type
// değiştirilmeye çalışılırsa service katmanı ErrInvalidTransition döner.
// Participants bir settir: kaydetmeden önce dedupe edilir.
type Channel struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Type            ChannelType `json:"type"`
	Description     *string     `json:"description"`
	Participants    []string    `json:"participants"`
	MaxParticipants int         `json:"max_participants"` // 0 = sınırsız (sadece voice)
	CreatedBy       string      `json:"created_by"`
	CreatedAt       time.Time   `json:"created_at"`

	// Listeleme sırasında doldurulan türetilmiş alanlar — DB'de saklanmaz.
	LastMessage    *Message `json:"last_message,omitempty"`   // Kanalın en son mesajı (seq'e göre)
	UnreadCount    int      `json:"unread_count"`             // İsteği yapan kullanıcıya özgü
	ConnectedUsers []string `json:"connected_users,omitempty"` // Voice roster'ın bilgi amaçlı kopyası
}

// CreateChannelRequest, yeni kanal oluşturma isteği.
type CreateChannelRequest struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Participants    []string `json:"participants"`
	MaxParticipants int      `json:"max_participants"`
}

// Validate, CreateChannelRequest'in geçerli olup olmadığını kontrol eder.
// Boş isim kontrolü burada YAPILMAZ — service katmanı onu ErrInvalidName
// ile ayrıca raporlar. Burada kalan kurallar: uzunluk, karakter seti, tür.
func (r *CreateChannelRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if utf8.RuneCountInString(r.Name) > 100 {
		return fmt.Errorf("channel name must be at most 100 characters")
	}

	for _, ch := range r.Name {
		if !isValidChannelNameChar(ch) {
			return fmt.Errorf("channel name contains invalid characters")
		}
	}

	if !ChannelType(r.Type).Valid() {
		return fmt.Errorf("channel type must be one of: public, private, voice, direct, group")
	}

	r.Description = strings.TrimSpace(r.Description)
	if utf8.RuneCountInString(r.Description) > 1024 {
		return fmt.Errorf("channel description must be at most 1024 characters")
	}

	if r.MaxParticipants < 0 {
		return fmt.Errorf("max_participants cannot be negative")
	}

	return nil
}

// UpdateChannelRequest, kanal güncelleme isteği.
// Pointer kullanılır — nil ise o alan güncellenmez (partial update).
// Type alanı sadece reddetmek için vardır: non-nil gelirse service
// katmanı ErrInvalidTransition döner.
type UpdateChannelRequest struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Participants *[]string `json:"participants"`
	Type         *string   `json:"type"`
}

// Validate, UpdateChannelRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpdateChannelRequest) Validate() error {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
		nameLen := utf8.RuneCountInString(*r.Name)
		if nameLen < 1 || nameLen > 100 {
			return fmt.Errorf("channel name must be between 1 and 100 characters")
		}
		for _, ch := range *r.Name {
			if !isValidChannelNameChar(ch) {
				return fmt.Errorf("channel name contains invalid characters")
			}
		}
	}

	if r.Description != nil {
		*r.Description = strings.TrimSpace(*r.Description)
		if utf8.RuneCountInString(*r.Description) > 1024 {
			return fmt.Errorf("channel description must be at most 1024 characters")
		}
	}

	return nil
}

// NormalizeParticipants, katılımcı listesini set'e dönüştürür:
// boş id'ler atılır, tekrarlar silinir, sıra deterministik olsun diye sıralanır.
func NormalizeParticipants(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// HasParticipant, userID'nin kanal katılımcısı olup olmadığını döner.
func (c *Channel) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// isValidChannelNameChar, kanal adında izin verilen karakterleri kontrol eder.
// Unicode harf/rakam, boşluk, tire, alt çizgi kabul edilir.
func isValidChannelNameChar(ch rune) bool {
	return unicode.IsLetter(ch) ||
		unicode.IsDigit(ch) ||
		ch == '-' || ch == '_' || ch == ' '
}
