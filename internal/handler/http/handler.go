package http

import (
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/service"
)

// maxBlobSize bounds a single uploaded blob.
const maxBlobSize = 64 << 20

type Handler struct {
	services *service.Services
	token    string

	logger *logger.Logger
}

// NewHandler creates the blob API handler. An empty token disables
// authentication.
func NewHandler(services *service.Services, token string, logger *logger.Logger) *Handler {
	logger.Info().Bool("auth", token != "").Msg("http handler created")
	return &Handler{
		services: services,
		token:    token,
		logger:   logger,
	}
}
