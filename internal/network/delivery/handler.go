package delivery

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	networkdomain "careertrack-backend/internal/network/domain"
	"careertrack-backend/internal/network/repository"
)

type ContactHandler struct {
	contacts repository.ContactRepository
}

func NewContactHandler(contacts repository.ContactRepository) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) GetAll(c *gin.Context) {
	contacts, err := h.contacts.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts, "total": len(contacts)})
}

func (h *ContactHandler) Create(c *gin.Context) {
	var contact networkdomain.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if contact.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if err := h.contacts.Create(&contact); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// Touch records an interaction with a contact, resetting its decay clock.
func (h *ContactHandler) Touch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.contacts.Touch(uint(id), time.Now().UTC()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contact touched"})
}

func (h *ContactHandler) UpdateStrength(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Strength string `json:"strength" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Strength {
	case networkdomain.StrengthClose, networkdomain.StrengthWarm, networkdomain.StrengthCold:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid strength"})
		return
	}

	if err := h.contacts.UpdateStrength(uint(id), req.Strength); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"strength": req.Strength})
}
