package matches

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kartikey004/resume-parser-ai/internal/resumes"
	"github.com/kartikey004/resume-parser-ai/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches match routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:id/match", h.create)
	rg.GET("/matches/:id/status", h.status)
	rg.GET("/matches/:id", h.result)
}

type createRequest struct {
	JobDescription map[string]any `json:"jobDescription" binding:"required"`
	Options        map[string]any `json:"options"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobDescription is required", nil)
		return
	}

	job, err := h.Svc.Create(c.Request.Context(), c.Param("id"), req.JobDescription)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrResumeNotReady):
			respond.Error(c, http.StatusConflict, "resume_not_ready", "resume processing is not completed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to queue match", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"matchId":   job.ID,
		"resumeId":  job.ResumeID,
		"status":    job.Status,
		"createdAt": job.CreatedAt,
	})
}

func (h *Handler) status(c *gin.Context) {
	job, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	respond.OK(c, gin.H{"matchId": job.ID, "status": job.Status})
}

func (h *Handler) result(c *gin.Context) {
	job, err := h.Svc.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotCompleted) {
			respond.Error(c, http.StatusConflict, "not_completed", "match processing is not completed", gin.H{"status": job.Status})
			return
		}
		h.respondLookupError(c, err)
		return
	}
	respond.OK(c, job.MatchResult)
}

func (h *Handler) respondLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "match job not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch match", nil)
	}
}
