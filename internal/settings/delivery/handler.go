package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"careertrack-backend/internal/settings"
)

// editableKeys are the settings the operator may change over HTTP. Internal
// bookkeeping keys like the poll watermark stay out of reach.
var editableKeys = map[string]bool{
	settings.KeyEmailCheckInterval: true,
	settings.KeyEmailAutoUpdate:    true,
	settings.KeyReminderHour:       true,
	settings.KeyWarmDecayDays:      true,
	settings.KeyCloseDecayDays:     true,
}

type SettingsHandler struct {
	settings settings.Repository
}

func NewSettingsHandler(settingsRepo settings.Repository) *SettingsHandler {
	return &SettingsHandler{settings: settingsRepo}
}

func (h *SettingsHandler) GetAll(c *gin.Context) {
	values, err := h.settings.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": values})
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for key := range req {
		if !editableKeys[key] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or read-only setting: " + key})
			return
		}
	}
	for key, value := range req {
		if err := h.settings.Set(key, value); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"updated": len(req)})
}
