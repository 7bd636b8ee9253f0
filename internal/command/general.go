package command

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/moothz/ravena-go/internal/domain"
)

func NewPingCommand() *domain.Command {
	return &domain.Command{
		Name:        "ping",
		Description: "Verifica se a ravena está viva",
		Category:    "geral",
		Handler: func(_ context.Context, cmdCtx *domain.CommandContext) (domain.Result, error) {
			return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(), "Pong! 🏓")), nil
		},
	}
}

// NewMenuCommand lists the registered, non-hidden commands grouped by
// category.
func NewMenuCommand(registry *Registry) *domain.Command {
	return &domain.Command{
		Name:        "menu",
		Aliases:     []string{"cmd", "comandos"},
		Description: "Lista os comandos disponíveis",
		Category:    "geral",
		Handler: func(_ context.Context, cmdCtx *domain.CommandContext) (domain.Result, error) {
			byCategory := make(map[string][]*domain.Command)
			for _, cmd := range registry.All() {
				if cmd.Hidden {
					continue
				}
				category := cmd.Category
				if category == "" {
					category = "geral"
				}
				byCategory[category] = append(byCategory[category], cmd)
			}

			categories := make([]string, 0, len(byCategory))
			for category := range byCategory {
				categories = append(categories, category)
			}
			sort.Strings(categories)

			var b strings.Builder
			b.WriteString("*Comandos da ravena*\n")
			for _, category := range categories {
				b.WriteString(fmt.Sprintf("\n— *%s*\n", category))
				for _, cmd := range byCategory[category] {
					b.WriteString(fmt.Sprintf("  !%s — %s\n", cmd.Name, cmd.Description))
				}
			}

			return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(), b.String())), nil
		},
	}
}

// NewRollCommand rolls dice in NdM notation, defaulting to a single d6.
func NewRollCommand() *domain.Command {
	return &domain.Command{
		Name:        "roll",
		Aliases:     []string{"dado"},
		Description: "Rola dados, ex: !roll 2d20",
		Usage:       "!roll [NdM]",
		Category:    "jogos",
		Handler: func(_ context.Context, cmdCtx *domain.CommandContext) (domain.Result, error) {
			count, sides := 1, 6
			if len(cmdCtx.Args) > 0 {
				parsedCount, parsedSides, err := parseDice(cmdCtx.Args[0])
				if err != nil {
					return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(),
						"Formato inválido. Use NdM, ex: 2d20.")), nil
				}
				count, sides = parsedCount, parsedSides
			}

			rolls := make([]string, count)
			total := 0
			for i := 0; i < count; i++ {
				roll := rand.Intn(sides) + 1
				total += roll
				rolls[i] = strconv.Itoa(roll)
			}

			text := fmt.Sprintf("🎲 %dd%d: %s", count, sides, strings.Join(rolls, " + "))
			if count > 1 {
				text += fmt.Sprintf(" = *%d*", total)
			}
			return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(), text)), nil
		},
	}
}

func parseDice(token string) (count, sides int, err error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(token)), "d", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("not NdM notation: %q", token)
	}

	count = 1
	if parts[0] != "" {
		count, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, err
		}
	}
	sides, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}

	if count < 1 || count > 100 || sides < 2 || sides > 1000 {
		return 0, 0, fmt.Errorf("dice out of range: %q", token)
	}
	return count, sides, nil
}

// NewStickerCommand converts the attached (or quoted) media into a sticker.
func NewStickerCommand(deps *Dependencies) *domain.Command {
	return &domain.Command{
		Name:        "sticker",
		Aliases:     []string{"s", "figurinha"},
		Description: "Transforma a mídia em figurinha",
		Category:    "mídia",
		NeedsMedia:  true,
		Handler: func(_ context.Context, cmdCtx *domain.CommandContext) (domain.Result, error) {
			msg := cmdCtx.Message
			mediaURL, mimetype := msg.MediaURL, msg.Mimetype
			if mediaURL == "" && msg.Quoted != nil {
				mediaURL, mimetype = msg.Quoted.MediaURL, msg.Quoted.Mimetype
			}
			if mediaURL == "" {
				return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(),
					"Não consegui acessar a mídia dessa mensagem.")), nil
			}

			rm := domain.NewMediaMessage(cmdCtx.ChatID(), &domain.Media{
				URL:      mediaURL,
				Mimetype: mimetype,
			})
			rm.Options.SendMediaAsSticker = true
			rm.Options.StickerAuthor = "ravena"
			rm.Options.StickerName = msg.AuthorName
			return domain.Reply(rm), nil
		},
	}
}

// NewStatsCommand reports in-process usage counters and, when the report
// repository is configured, the last day's totals from postgres.
func NewStatsCommand(registry *Registry, deps *Dependencies) *domain.Command {
	return &domain.Command{
		Name:        "uso",
		Aliases:     []string{"stats"},
		Description: "Estatísticas de uso dos comandos",
		Category:    "geral",
		Hidden:      true,
		Handler: func(ctx context.Context, cmdCtx *domain.CommandContext) (domain.Result, error) {
			var b strings.Builder
			b.WriteString("*Uso desde o último restart*\n")
			for _, cmd := range registry.All() {
				count, lastUsed := cmd.Stats()
				if count == 0 {
					continue
				}
				b.WriteString(fmt.Sprintf("  !%s: %d (último: %s)\n",
					cmd.Name, count, lastUsed.Format("15:04:05")))
			}

			if deps.Reports != nil {
				counts, err := deps.Reports.CommandCounts(ctx, time.Now().Add(-24*time.Hour))
				if err == nil && len(counts) > 0 {
					b.WriteString("\n*Últimas 24h*\n")
					names := make([]string, 0, len(counts))
					for name := range counts {
						names = append(names, name)
					}
					sort.Strings(names)
					for _, name := range names {
						b.WriteString(fmt.Sprintf("  !%s: %d\n", name, counts[name]))
					}
				}
			}

			return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(), b.String())), nil
		},
	}
}
