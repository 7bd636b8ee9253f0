package command

import (
	"github.com/moothz/ravena-go/internal/domain"
	"github.com/moothz/ravena-go/internal/evolution"
	"github.com/moothz/ravena-go/internal/service/ai"
	"github.com/moothz/ravena-go/internal/service/database"
	"github.com/moothz/ravena-go/internal/service/media"
	"github.com/moothz/ravena-go/internal/service/weather"
	"go.uber.org/zap"
)

// Dependencies bundles the services command bodies are allowed to touch.
// Optional services are nil when not configured; commands that need them are
// simply not registered.
type Dependencies struct {
	Downloader *media.Downloader
	Weather    *weather.Service
	AI         *ai.Service
	Transport  *evolution.Client
	Reports    *database.UsageReportRepository
	Logger     *zap.Logger
}

type registration struct {
	cmd     *domain.Command
	enabled bool
}

// RegisterAll populates the registry with every available command. The menu
// and stats commands close over the registry to render their listings.
func RegisterAll(registry *Registry, deps *Dependencies) error {
	available := []registration{
		{NewPingCommand(), true},
		{NewMenuCommand(registry), true},
		{NewRollCommand(), true},
		{NewStickerCommand(deps), true},
		{NewDownloadCommand(deps), deps.Downloader != nil},
		{NewWeatherCommand(deps), deps.Weather != nil},
		{NewAICommand(deps), deps.AI != nil},
		{NewDeleteCommand(deps), deps.Transport != nil},
		{NewStatsCommand(registry, deps), true},
	}

	for _, reg := range available {
		if !reg.enabled {
			continue
		}
		if err := registry.Register(reg.cmd); err != nil {
			return err
		}
	}
	return nil
}
