package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"careertrack-backend/internal/apperrors"
	emaildto "careertrack-backend/internal/email/dto"
	"careertrack-backend/internal/email/repository"
	"careertrack-backend/internal/email/usecase"
)

type EmailHandler struct {
	accounts *usecase.AccountService
	monitor  *usecase.Monitor
	messages repository.MessageRepository
}

func NewEmailHandler(accounts *usecase.AccountService, monitor *usecase.Monitor, messages repository.MessageRepository) *EmailHandler {
	return &EmailHandler{
		accounts: accounts,
		monitor:  monitor,
		messages: messages,
	}
}

func (h *EmailHandler) GetProviders(c *gin.Context) {
	status, err := h.accounts.Status()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emaildto.ProvidersResponse{
		Providers:         status,
		EncryptionEnabled: h.accounts.EncryptionEnabled(),
	})
}

func (h *EmailHandler) Connect(c *gin.Context) {
	providerName := c.Param("provider")
	redirectURI := c.Query("redirect_uri")

	authURL, err := h.accounts.ConnectURL(providerName, redirectURI)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownProvider) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
			return
		}
		if errors.Is(err, apperrors.ErrNotConfigured) {
			c.JSON(http.StatusConflict, gin.H{"error": "provider is not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emaildto.ConnectResponse{AuthURL: authURL})
}

func (h *EmailHandler) Callback(c *gin.Context) {
	providerName := c.Param("provider")

	var req emaildto.CallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	cred, err := h.accounts.CompleteConnect(c.Request.Context(), providerName, req.Code, req.RedirectURI)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownProvider) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
			return
		}
		if errors.Is(err, apperrors.ErrAuthFailure) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization code rejected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider":      cred.Provider,
		"account_email": cred.AccountEmail,
	})
}

func (h *EmailHandler) Disconnect(c *gin.Context) {
	providerName := c.Param("provider")
	if err := h.accounts.Disconnect(providerName); err != nil {
		if errors.Is(err, apperrors.ErrUnknownProvider) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
			return
		}
		if errors.Is(err, apperrors.ErrCredentialNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "provider is not connected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "provider disconnected"})
}

// CheckNow runs a poll cycle synchronously and returns its counters.
func (h *EmailHandler) CheckNow(c *gin.Context) {
	stats, err := h.monitor.RunCycle(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emaildto.CheckNowResponse{Stats: stats})
}

func (h *EmailHandler) GetMessages(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	messages, err := h.messages.ListRecent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emaildto.MessagesResponse{Messages: messages, Limit: limit})
}

// GetReviewQueue lists auto-matched messages awaiting confirmation.
func (h *EmailHandler) GetReviewQueue(c *gin.Context) {
	messages, err := h.messages.ListPendingReview()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *EmailHandler) ConfirmMatch(c *gin.Context) {
	h.resolveMatch(c, true)
}

func (h *EmailHandler) RejectMatch(c *gin.Context) {
	h.resolveMatch(c, false)
}

func (h *EmailHandler) resolveMatch(c *gin.Context, confirmed bool) {
	id := c.Param("id")
	if err := h.messages.SetUserConfirmed(id, confirmed); err != nil {
		if errors.Is(err, apperrors.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"confirmed": confirmed})
}
