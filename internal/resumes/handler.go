package resumes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kartikey004/resume-parser-ai/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/upload", h.upload)
	rg.GET("/resumes/:id/status", h.status)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
	rg.GET("/analytics/resumes/:id", h.analytics)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds the 10MB limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	ctx := WithRequestID(c.Request.Context(), c.GetString("requestId"))
	resume, err := h.Svc.Upload(ctx, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload resume", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, toStatusResponse(resume))
}

func (h *Handler) status(c *gin.Context) {
	resume, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	respond.OK(c, toStatusResponse(resume))
}

func (h *Handler) get(c *gin.Context) {
	resume, err := h.Svc.Parsed(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotCompleted) {
			respond.Error(c, http.StatusConflict, "not_completed", "resume processing is not completed", gin.H{"status": resume.Status})
			return
		}
		h.respondLookupError(c, err)
		return
	}
	respond.OK(c, toResponse(resume))
}

type updateRequest struct {
	StructuredData map[string]any `json:"structuredData" binding:"required"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "structuredData is required", nil)
		return
	}

	resume, err := h.Svc.ManualUpdate(c.Request.Context(), c.Param("id"), req.StructuredData)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	respond.OK(c, toResponse(resume))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondLookupError(c, err)
		return
	}
	respond.OK(c, gin.H{"deleted": true})
}

func (h *Handler) analytics(c *gin.Context) {
	enhancements, err := h.Svc.Analytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotCompleted) {
			respond.Error(c, http.StatusConflict, "not_completed", "resume processing is not completed", nil)
			return
		}
		h.respondLookupError(c, err)
		return
	}
	respond.OK(c, gin.H{"resumeId": c.Param("id"), "aiEnhancements": enhancements})
}

func (h *Handler) respondLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch resume", nil)
	}
}
