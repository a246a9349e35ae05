package models

import "time"

// Reaction, bir kullanıcının bir mesaja verdiği tek bir emoji tepkisini temsil eder.
// DB'deki "reactions" tablosunun Go karşılığı.
//
// UNIQUE(message_id, user_id, emoji) constraint'i sayesinde
// bir kullanıcı aynı mesaja aynı emojiyi sadece bir kez ekleyebilir —
// Add bu yüzden doğal olarak idempotent'tir.
type Reaction struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionGroup, bir mesajdaki aynı emojinin toplu görünümü.
// Count her zaman Users set'inin boyutuna eşittir; set boşaldığında
// grup tamamen kaybolur (sıfır count'lu grup döndürülmez).
//
// Örnek: 👍 3 [user1, user2, user3]
type ReactionGroup struct {
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}
