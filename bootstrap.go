package unchained

import (
	"github.com/unrolled/render"

	"github.com/robgibbons/express-unchained/events"
	"github.com/robgibbons/express-unchained/internal/bootstrap"
	"github.com/robgibbons/express-unchained/models"
)

// InitLogger initializes the logger based on configuration
func InitLogger(config *models.Config) models.Logger {
	return bootstrap.InitLogger(bootstrap.LoggerOptions{Level: config.Logger.Level})
}

// InitRenderer builds the template engine from configuration
func InitRenderer(config *models.Config) *render.Render {
	return bootstrap.InitRenderer(config.Render)
}

// InitEventBus creates the lifecycle event bus over the in-process
// transport
func InitEventBus(config *models.Config) models.EventBus {
	return events.NewEventBus(config.EventBus, nil)
}
