package handlers

import (
	"net/http"

	"github.com/akinalp/opsdesk/pkg"
	"github.com/akinalp/opsdesk/services"
)

// UploadHandler, dosya yükleme endpoint'ini yöneten struct.
type UploadHandler struct {
	uploadService services.UploadService
	maxSize       int64
}

// NewUploadHandler, constructor.
func NewUploadHandler(uploadService services.UploadService, maxSize int64) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxSize:       maxSize,
	}
}

// Upload godoc
// POST /api/uploads
// multipart/form-data, "file" alanı. Pending attachment kaydı döner;
// dönen id daha sonra mesaj gönderiminde attachment_ids ile bağlanır.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	// MaxBytesReader: body'yi limitle — dev dosya RAM'i şişirmeden kesilir.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1024)

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	attachment, err := h.uploadService.Upload(r.Context(), claims.UserID, file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, attachment)
}
