// Package main — Repository katmanı başlatma.
//
// initRepositories, tüm repository implementasyonlarını oluşturur.
// Her repository aynı *sql.DB bağlantısını alır ve interface döner.
// main.go'daki wire-up'ı modülerleştirmek için bu dosyaya taşındı.
package main

import (
	"database/sql"

	"github.com/akinalp/opsdesk/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
//
// Neden struct? Ayrı ayrı değişkenler yerine tek struct kullanmak
// fonksiyon imzalarını temiz tutar ve yeni repository eklendiğinde
// sadece struct + initRepositories güncellenir.
type Repositories struct {
	Channel    repository.ChannelRepository
	Message    repository.MessageRepository
	Attachment repository.AttachmentRepository
	Mention    repository.MentionRepository
	Reaction   repository.ReactionRepository
	ReadState  repository.ReadStateRepository
	Directory  repository.DirectoryRepository
}

// initRepositories, veritabanı bağlantısından tüm repository'leri oluşturur.
//
// Her NewSQLite* fonksiyonu aynı *sql.DB'yi alır — Go'nun sql.DB'si
// thread-safe connection pool'dur, paylaşılması güvenlidir.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		Channel:    repository.NewSQLiteChannelRepo(conn),
		Message:    repository.NewSQLiteMessageRepo(conn),
		Attachment: repository.NewSQLiteAttachmentRepo(conn),
		Mention:    repository.NewSQLiteMentionRepo(conn),
		Reaction:   repository.NewSQLiteReactionRepo(conn),
		ReadState:  repository.NewSQLiteReadStateRepo(conn),
		Directory:  repository.NewSQLiteDirectoryRepo(conn),
	}
}
