package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appdomain "careertrack-backend/internal/application/domain"
	appdto "careertrack-backend/internal/application/dto"
	"careertrack-backend/internal/application/repository"
	"careertrack-backend/internal/application/usecase"
	"careertrack-backend/internal/apperrors"
)

type ApplicationHandler struct {
	applications repository.ApplicationRepository
	followUps    repository.FollowUpRepository
	variants     *usecase.VariantAnalysisService
}

func NewApplicationHandler(applications repository.ApplicationRepository, followUps repository.FollowUpRepository, variants *usecase.VariantAnalysisService) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
		followUps:    followUps,
		variants:     variants,
	}
}

func (h *ApplicationHandler) GetAll(c *gin.Context) {
	apps, err := h.applications.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, appdto.ApplicationsResponse{Applications: apps, Total: len(apps)})
}

func (h *ApplicationHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	app, err := h.applications.GetByID(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrApplicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) Create(c *gin.Context) {
	var req appdto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = appdomain.StatusApplied
	}
	if !appdomain.IsValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	app := &appdomain.Application{
		Company:           req.Company,
		Role:              req.Role,
		DateApplied:       req.DateApplied,
		Status:            status,
		SalaryRange:       req.SalaryRange,
		JobPostingURL:     req.JobPostingURL,
		ApplicationMethod: req.ApplicationMethod,
		Notes:             req.Notes,
	}
	if err := h.applications.Create(app); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req appdto.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.applications.GetByID(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrApplicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Company != nil {
		app.Company = *req.Company
	}
	if req.Role != nil {
		app.Role = *req.Role
	}
	if req.DateApplied != nil {
		app.DateApplied = req.DateApplied
	}
	if req.SalaryRange != nil {
		app.SalaryRange = *req.SalaryRange
	}
	if req.JobPostingURL != nil {
		app.JobPostingURL = *req.JobPostingURL
	}
	if req.ApplicationMethod != nil {
		app.ApplicationMethod = *req.ApplicationMethod
	}
	if req.Notes != nil {
		app.Notes = *req.Notes
	}

	if err := h.applications.Update(app); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req appdto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.applications.UpdateStatus(id, req.Status); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		case errors.Is(err, apperrors.ErrApplicationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *ApplicationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.applications.Delete(id); err != nil {
		if errors.Is(err, apperrors.ErrApplicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "application deleted"})
}

func (h *ApplicationHandler) GetFollowUps(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	followUps, err := h.followUps.ListByApplication(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"follow_ups": followUps})
}

func (h *ApplicationHandler) CreateFollowUp(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req appdto.CreateFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.applications.GetByID(id); err != nil {
		if errors.Is(err, apperrors.ErrApplicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fu := &appdomain.FollowUp{
		ApplicationID: id,
		ScheduledDate: req.ScheduledDate,
		ActionType:    req.ActionType,
		Notes:         req.Notes,
	}
	if err := h.followUps.Create(fu); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, fu)
}

func (h *ApplicationHandler) CompleteFollowUp(c *gin.Context) {
	fuID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.followUps.MarkComplete(uint(fuID)); err != nil {
		if errors.Is(err, apperrors.ErrFollowUpNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "follow-up not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "follow-up completed"})
}

// GetVariantAnalysis serves the cached weekly comparison, recomputing when
// nothing is cached yet.
func (h *ApplicationHandler) GetVariantAnalysis(c *gin.Context) {
	if analysis, ok := h.variants.Cached(); ok {
		c.JSON(http.StatusOK, analysis)
		return
	}

	analysis, err := h.variants.Run()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if analysis == nil {
		c.JSON(http.StatusOK, gin.H{"message": "not enough variant data yet"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
