package delivery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"careertrack-backend/internal/apperrors"
	"careertrack-backend/internal/jobs"
)

type JobsHandler struct {
	scheduler *jobs.Service
}

func NewJobsHandler(scheduler *jobs.Service) *JobsHandler {
	return &JobsHandler{scheduler: scheduler}
}

func (h *JobsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.scheduler.Status()})
}

func (h *JobsHandler) Run(c *gin.Context) {
	h.control(c, h.scheduler.RunNow, "job triggered")
}

func (h *JobsHandler) Pause(c *gin.Context) {
	h.control(c, h.scheduler.Pause, "job paused")
}

func (h *JobsHandler) Resume(c *gin.Context) {
	h.control(c, h.scheduler.Resume, "job resumed")
}

func (h *JobsHandler) control(c *gin.Context, op func(string) error, message string) {
	id := c.Param("id")
	if err := op(id); err != nil {
		if errors.Is(err, apperrors.ErrUnknownJob) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
