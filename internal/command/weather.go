package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/moothz/ravena-go/internal/domain"
	"github.com/moothz/ravena-go/internal/service/weather"
	"go.uber.org/zap"
)

func NewWeatherCommand(deps *Dependencies) *domain.Command {
	return &domain.Command{
		Name:            "clima",
		Aliases:         []string{"tempo"},
		Description:     "Previsão do tempo para uma cidade",
		Usage:           "!clima <cidade>",
		Category:        "utilidades",
		NeedsArgs:       true,
		CooldownSeconds: 10,
		Handler: func(ctx context.Context, cmdCtx *domain.CommandContext) (domain.Result, error) {
			location := strings.Join(cmdCtx.Args, " ")

			report, err := deps.Weather.Current(ctx, location)
			if err != nil {
				deps.Logger.Warn("Weather lookup failed",
					zap.String("location", location),
					zap.Error(err),
				)
				return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(),
					fmt.Sprintf("Não encontrei o clima para *%s*.", location))), nil
			}

			text := fmt.Sprintf(
				"🌤 *%s, %s*\n\n🌡 %.1f°C, %s\n💧 Umidade: %.0f%%\n💨 Vento: %.1f km/h",
				report.Location,
				report.Country,
				report.Temperature,
				weather.Describe(report.Code),
				report.Humidity,
				report.WindSpeed,
			)
			return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(), text)), nil
		},
	}
}
