package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appDelivery "careertrack-backend/internal/application/delivery"
	emailDelivery "careertrack-backend/internal/email/delivery"
	jobsDelivery "careertrack-backend/internal/jobs/delivery"
	networkDelivery "careertrack-backend/internal/network/delivery"
	settingsDelivery "careertrack-backend/internal/settings/delivery"
)

// Handlers bundles every feature handler the router mounts.
type Handlers struct {
	Email        *emailDelivery.EmailHandler
	Applications *appDelivery.ApplicationHandler
	Contacts     *networkDelivery.ContactHandler
	Jobs         *jobsDelivery.JobsHandler
	Settings     *settingsDelivery.SettingsHandler
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		email := api.Group("/email")
		{
			email.GET("/providers", h.Email.GetProviders)
			email.GET("/connect/:provider", h.Email.Connect)
			email.POST("/callback/:provider", h.Email.Callback)
			email.DELETE("/disconnect/:provider", h.Email.Disconnect)
			email.POST("/check-now", h.Email.CheckNow)
			email.GET("/messages", h.Email.GetMessages)
			email.GET("/review", h.Email.GetReviewQueue)
			email.POST("/review/:id/confirm", h.Email.ConfirmMatch)
			email.POST("/review/:id/reject", h.Email.RejectMatch)
		}

		applications := api.Group("/applications")
		{
			applications.GET("", h.Applications.GetAll)
			applications.POST("", h.Applications.Create)
			applications.GET("/variants/analysis", h.Applications.GetVariantAnalysis)
			applications.GET("/:id", h.Applications.GetByID)
			applications.PUT("/:id", h.Applications.Update)
			applications.PATCH("/:id/status", h.Applications.UpdateStatus)
			applications.DELETE("/:id", h.Applications.Delete)
			applications.GET("/:id/followups", h.Applications.GetFollowUps)
			applications.POST("/:id/followups", h.Applications.CreateFollowUp)
		}
		api.PATCH("/followups/:id/complete", h.Applications.CompleteFollowUp)

		contacts := api.Group("/contacts")
		{
			contacts.GET("", h.Contacts.GetAll)
			contacts.POST("", h.Contacts.Create)
			contacts.POST("/:id/touch", h.Contacts.Touch)
			contacts.PATCH("/:id/strength", h.Contacts.UpdateStrength)
		}

		jobs := api.Group("/jobs")
		{
			jobs.GET("", h.Jobs.List)
			jobs.POST("/:id/run", h.Jobs.Run)
			jobs.POST("/:id/pause", h.Jobs.Pause)
			jobs.POST("/:id/resume", h.Jobs.Resume)
		}

		api.GET("/settings", h.Settings.GetAll)
		api.PUT("/settings", h.Settings.Update)
	}
}
