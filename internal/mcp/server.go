package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/tally-mcp/internal/app"
	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
)

// TimesheetService defines the read side needed by MCP.
type TimesheetService interface {
	Refresh(ctx context.Context) error
	EnsureLoaded(ctx context.Context) error
	Listing() app.Listing
	Row(id string) (timesheet.Row, bool)
}

// TimerService defines the timer operations needed by MCP.
type TimerService interface {
	StopTimerForEntry(ctx context.Context, entryID string) error
	SwitchTimer(ctx context.Context, entryID string) (*timesheet.TimeEntry, error)
	RecreateAndStart(ctx context.Context, entryID string) (*timesheet.TimeEntry, error)
	UpdateNote(ctx context.Context, entryID, note string) (*timesheet.TimeEntry, error)
	CopyNote(ctx context.Context, entryID string, asHTML bool) (string, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	RecentActivity(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Timesheet TimesheetService
	Timers    TimerService
	Activity  ActivityService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Version  string
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "tally",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services, cfg.Logger)

	return server
}
