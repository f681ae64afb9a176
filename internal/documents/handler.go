package documents

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"healthdocs-backend/internal/shared/server/middleware"
	"healthdocs-backend/internal/shared/server/respond"
)

const defaultMaxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc           *Service
	MaxUploadSize int64
}

// NewHandler constructs a Handler. A non-positive maxUploadSize means 10MB.
func NewHandler(svc *Service, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxUploadSize
	}
	return &Handler{Svc: svc, MaxUploadSize: maxUploadSize}
}

// RegisterRoutes attaches document routes.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/upload", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id/download/original", h.downloadOriginal)
	rg.GET("/documents/:id/download/digital_copy", h.downloadDigitalCopy)
	rg.DELETE("/documents/:id", h.delete)
	rg.GET("/analytics", h.analytics)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "File exceeds the maximum upload size")
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file part in the request")
		return
	}
	if strings.TrimSpace(fileHeader.Filename) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No selected file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file")
		return
	}

	doc, err := h.Svc.Upload(c.Request.Context(), userID, UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Data:        data,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Set("documentId", doc.ID)
	c.Set("category", doc.Category)
	respond.JSON(c, http.StatusCreated, uploadResponse{
		Message:            uploadedMessage,
		DocumentID:         doc.ID,
		OriginalURL:        doc.OriginalLocator,
		DigitalCopyContent: doc.DigitalCopyText,
		Category:           doc.Category,
	})
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) downloadOriginal(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)

	doc, rc, err := h.Svc.Original(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	respond.Attachment(c, doc.MimeType, doc.Name, 0, rc)
}

func (h *Handler) downloadDigitalCopy(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)

	name, text, err := h.Svc.DigitalCopy(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	respond.Attachment(c, "text/plain; charset=utf-8", name, int64(len(text)), strings.NewReader(text))
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)

	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, messageResponse{Message: deletedMessage})
}

func (h *Handler) analytics(c *gin.Context) {
	a, err := h.Svc.Analytics(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toAnalyticsResponse(a))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoOriginal):
		respond.Error(c, http.StatusNotFound, "not_found", "Original file URL not found for this document")
	case errors.Is(err, ErrNoDigitalCopy):
		respond.Error(c, http.StatusNotFound, "not_found", "Digital copy content not available for this document")
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	default:
		respond.Error(c, http.StatusInternalServerError, "storage_error", err.Error())
	}
}
