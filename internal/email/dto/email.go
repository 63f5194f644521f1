package dto

import (
	emaildomain "careertrack-backend/internal/email/domain"
	"careertrack-backend/internal/email/usecase"
)

type ProvidersResponse struct {
	Providers         []usecase.ProviderStatus `json:"providers"`
	EncryptionEnabled bool                     `json:"encryption_enabled"`
}

type ConnectResponse struct {
	AuthURL string `json:"auth_url"`
}

type CallbackRequest struct {
	Code        string `json:"code" form:"code" binding:"required"`
	RedirectURI string `json:"redirect_uri" form:"redirect_uri"`
}

type MessagesResponse struct {
	Messages []emaildomain.MessageRecord `json:"messages"`
	Limit    int                         `json:"limit"`
}

type CheckNowResponse struct {
	Stats usecase.CycleStats `json:"stats"`
}
