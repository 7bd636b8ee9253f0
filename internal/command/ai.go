package command

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/moothz/ravena-go/internal/constants"
	"github.com/moothz/ravena-go/internal/domain"
)

// truncatePrompt caps the prompt at max bytes without splitting a UTF-8
// sequence: the cut backs up to the nearest rune start.
func truncatePrompt(prompt string, max int) string {
	if len(prompt) <= max {
		return prompt
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(prompt[cut]) {
		cut--
	}
	return prompt[:cut]
}

func NewAICommand(deps *Dependencies) *domain.Command {
	return &domain.Command{
		Name:            "ai",
		Aliases:         []string{"ia", "ravena"},
		Description:     "Conversa com a ravena",
		Usage:           "!ai <pergunta>",
		Category:        "geral",
		NeedsArgs:       true,
		CooldownSeconds: 15,
		Reactions:       domain.Reactions{Before: "🤖"},
		Handler: func(ctx context.Context, cmdCtx *domain.CommandContext) (domain.Result, error) {
			prompt := truncatePrompt(strings.Join(cmdCtx.Args, " "), constants.AIInputLimits.MaxPromptLength)

			answer, err := deps.AI.Reply(ctx, prompt)
			if err != nil {
				return domain.Result{}, err
			}

			rm := domain.NewTextMessage(cmdCtx.ChatID(), answer)
			rm.Options.QuotedMessageID = cmdCtx.Message.ID
			return domain.Reply(rm), nil
		},
	}
}
