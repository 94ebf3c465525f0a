package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"car-rental-service/internal/service"
	"car-rental-service/internal/storage"
)

const photosField = "photos"

type PhotoHandler struct {
	svc      *service.UploadService
	reader   storage.ObjectReader
	maxFiles int
	log      *zap.Logger
}

// NewPhotoHandler builds the upload handler. reader may be nil when the object store
// serves files itself; the download route is then not registered.
func NewPhotoHandler(svc *service.UploadService, reader storage.ObjectReader, maxFiles int, log *zap.Logger) *PhotoHandler {
	return &PhotoHandler{svc: svc, reader: reader, maxFiles: maxFiles, log: log}
}

func (h *PhotoHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.UploadPhotos)
	if h.reader != nil {
		rg.GET("/photos/:id", h.DownloadPhoto)
	}
}

// POST /api/upload answers the public URLs in the order the files were sent.
func (h *PhotoHandler) UploadPhotos(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		return
	}
	defer form.RemoveAll()

	// Files of one field keep their submission order; across fields it is lost.
	plain, bracketed := form.File[photosField], form.File[photosField+"[]"]
	if len(plain) > 0 && len(bracketed) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "send files under a single field name"})
		return
	}
	files := plain
	if len(files) == 0 {
		files = bracketed
	}
	if len(files) > h.maxFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d files per upload", h.maxFiles)})
		return
	}

	urls, err := h.svc.Upload(c.Request.Context(), files)
	if err != nil {
		_ = c.Error(err)
		h.log.Error("upload failed", zap.Int("uploaded", len(urls)), zap.Int("files", len(files)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed", "uploaded": urls})
		return
	}
	c.JSON(http.StatusOK, urls)
}

// GET /api/photos/:id
func (h *PhotoHandler) DownloadPhoto(c *gin.Context) {
	rc, contentType, err := h.reader.Open(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}
	if err != nil {
		respondError(c, h.log, err, "photo not found")
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.log.Warn("photo download interrupted", zap.String("id", c.Param("id")), zap.Error(err))
	}
}
