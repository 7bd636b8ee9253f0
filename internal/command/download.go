package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/moothz/ravena-go/internal/domain"
	"github.com/moothz/ravena-go/internal/service/media"
	"go.uber.org/zap"
)

// NewDownloadCommand fetches media from a social-media URL. Repeated requests
// for the same URL are served from the download cache without touching the
// origin again.
func NewDownloadCommand(deps *Dependencies) *domain.Command {
	return &domain.Command{
		Name:            "dl",
		Aliases:         []string{"baixar", "download"},
		Description:     "Baixa vídeos e imagens de redes sociais",
		Usage:           "!dl <link>",
		Category:        "mídia",
		NeedsArgs:       true,
		CooldownSeconds: 30,
		Reactions:       domain.Reactions{Before: "📥"},
		Handler: func(ctx context.Context, cmdCtx *domain.CommandContext) (domain.Result, error) {
			rawURL := strings.TrimSpace(cmdCtx.Args[0])

			if media.DetectPlatform(rawURL) == "" {
				return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(),
					"Não reconheço esse link. Plataformas suportadas: YouTube, TikTok, Instagram, Twitter/X, Reddit e outras.")), nil
			}

			result, err := deps.Downloader.Fetch(ctx, rawURL)
			if err != nil {
				deps.Logger.Warn("Download failed",
					zap.String("url", rawURL),
					zap.Error(err),
				)
				return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(),
					"Não consegui baixar essa mídia. O link pode estar privado ou fora do ar.")), nil
			}

			envelopes := make([]*domain.ReturnMessage, 0, len(result.Files))
			for i, filePath := range result.Files {
				rm := domain.NewMediaMessage(cmdCtx.ChatID(), &domain.Media{
					Path: filePath,
				})
				if i == 0 {
					caption := fmt.Sprintf("via %s", result.Platform)
					if result.FromCache {
						caption += " (cache)"
					}
					rm.Options.Caption = caption
				}
				envelopes = append(envelopes, rm)
			}
			return domain.Replies(envelopes...), nil
		},
	}
}
