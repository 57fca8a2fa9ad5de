package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/internal/config"
	"github.com/jakechorley/event-rota/pkg/clients/gmailclient"
	"github.com/jakechorley/event-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/event-rota/pkg/core/slots"
	"github.com/jakechorley/event-rota/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg          *config.Config
	Grid         *slots.Grid
	SheetsClient *sheetsclient.Client
	GmailClient  *gmailclient.Client
	Database     db.Database
	Logger       *zap.Logger
	Ctx          context.Context
}

// Limit is the configured consecutive shift limit
func (app *AppContext) Limit() int {
	return app.Cfg.Event.ConsecutiveShiftLimit
}
