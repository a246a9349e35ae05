package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/akinalp/opsdesk/models"
	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/repository"
)

// UploadService, dosya yükleme iş mantığı interface'i.
//
// Upload iki aşamalı akışın ilk yarısıdır: dosya diske ve DB'ye "pending"
// (message_id NULL) olarak yazılır. Mesaj gönderilirken attachment id'leri
// CreateMessageRequest ile gelir ve MessageService claim eder.
// Pending attachment'lar mesaj akışında asla görünmez.
type UploadService interface {
	Upload(ctx context.Context, uploaderID string, file multipart.File, header *multipart.FileHeader) (*models.Attachment, error)
}

type uploadService struct {
	attachmentRepo repository.AttachmentRepository
	uploadDir      string
	maxSize        int64
}

// NewUploadService, constructor.
func NewUploadService(
	attachmentRepo repository.AttachmentRepository,
	uploadDir string,
	maxSize int64,
) UploadService {
	return &uploadService{
		attachmentRepo: attachmentRepo,
		uploadDir:      uploadDir,
		maxSize:        maxSize,
	}
}

// allowedMimeTypes, yüklemeye izin verilen dosya türleri.
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"audio/mpeg":      true,
	"audio/ogg":       true,
	"application/pdf": true,
	"text/plain":      true,
	"text/csv":        true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// Upload, dosyayı doğrular, diske kaydeder ve pending attachment kaydı oluşturur.
// Depolama hataları pkg.ErrUploadFailure ile raporlanır — console bunları
// validation hatalarından ayrı gösterir (yeniden deneme butonu).
func (s *uploadService) Upload(ctx context.Context, uploaderID string, file multipart.File, header *multipart.FileHeader) (*models.Attachment, error) {
	if header.Size > s.maxSize {
		return nil, fmt.Errorf("%w: file too large (max %dMB)", pkg.ErrBadRequest, s.maxSize/(1024*1024))
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// Sadece base MIME type'ı al (charset vb. parametre olabilir)
	mimeBase := strings.TrimSpace(strings.Split(contentType, ";")[0])

	if !allowedMimeTypes[mimeBase] {
		return nil, fmt.Errorf("%w: file type not allowed: %s", pkg.ErrBadRequest, mimeBase)
	}

	// Unique dosya adı — çakışma ve güvenlik için {random_hex}_{original}
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("%w: failed to generate filename", pkg.ErrUploadFailure)
	}
	safeFilename := sanitizeFilename(header.Filename)
	diskFilename := hex.EncodeToString(randomBytes) + "_" + safeFilename

	destPath := filepath.Join(s.uploadDir, diskFilename)
	destFile, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create file: %v", pkg.ErrUploadFailure, err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, file); err != nil {
		os.Remove(destPath)
		return nil, fmt.Errorf("%w: failed to save file: %v", pkg.ErrUploadFailure, err)
	}

	fileSize := header.Size
	attachment := &models.Attachment{
		Filename:   header.Filename,
		FileURL:    "/api/uploads/" + diskFilename,
		FileSize:   &fileSize,
		MimeType:   &mimeBase,
		UploadedBy: uploaderID,
	}

	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		os.Remove(destPath)
		return nil, fmt.Errorf("%w: failed to create attachment record: %v", pkg.ErrUploadFailure, err)
	}

	return attachment, nil
}

// sanitizeFilename, dosya adını güvenli hale getirir.
// Path traversal saldırılarını önler (../../etc/passwd gibi).
func sanitizeFilename(name string) string {
	name = filepath.Base(name)

	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '\x00' {
			return -1
		}
		return r
	}, name)

	if name == "" || name == "." || name == ".." {
		name = "unnamed"
	}

	return name
}
