// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar — her yerde ayrı ayrı
// os.Getenv() çağırmak yerine tek bir Config nesnesi taşırız.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — her struct tek bir concern'ü temsil eder.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	LiveKit  LiveKitConfig
	Upload   UploadConfig
	Email    EmailConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/opsdesk.db)
}

// JWTConfig, JWT doğrulama ayarları.
// Token'lar console'un SSO servisi tarafından imzalanır — bu çekirdek
// sadece doğrular, üretmez.
type JWTConfig struct {
	Secret string // Token imza anahtarı — GİZLİ TUTULMALI
}

// LiveKitConfig, LiveKit SFU server ayarları (voice kanal medya token'ları).
type LiveKitConfig struct {
	URL       string // LiveKit server URL (ör: ws://localhost:7880)
	APIKey    string
	APISecret string
}

// UploadConfig, dosya yükleme ayarları.
type UploadConfig struct {
	Dir     string // Dosyaların kaydedileceği dizin
	MaxSize int64  // Byte cinsinden max dosya boyutu (varsayılan: 25MB)
}

// EmailConfig, mention bildirimi e-postaları için Resend ayarları.
// ResendAPIKey boşsa e-posta bildirimi devre dışıdır.
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AppURL       string // E-postadaki "kanala git" linki için taban URL
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env dosyasını yükle — dosya yoksa hata vermez, sessizce devam eder.
	// Production'da bu dosya olmaz, gerçek env variable'lar kullanılır.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxSize, err := strconv.ParseInt(getEnv("UPLOAD_MAX_SIZE", "26214400"), 10, 64) // 25MB
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_SIZE: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/opsdesk.db"),
		},
		JWT: JWTConfig{
			Secret: jwtSecret,
		},
		LiveKit: LiveKitConfig{
			URL:       getEnv("LIVEKIT_URL", "ws://localhost:7880"),
			APIKey:    getEnv("LIVEKIT_API_KEY", ""),
			APISecret: getEnv("LIVEKIT_API_SECRET", ""),
		},
		Upload: UploadConfig{
			Dir:     getEnv("UPLOAD_DIR", "./data/uploads"),
			MaxSize: maxSize,
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("RESEND_FROM", ""),
			AppURL:       getEnv("APP_URL", ""),
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
