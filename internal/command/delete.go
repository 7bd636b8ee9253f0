package command

import (
	"context"

	"github.com/moothz/ravena-go/internal/domain"
	"github.com/moothz/ravena-go/internal/evolution"
	"go.uber.org/zap"
)

// NewDeleteCommand removes the quoted message for everyone. The handler
// drives the transport itself and reports no delivery.
func NewDeleteCommand(deps *Dependencies) *domain.Command {
	return &domain.Command{
		Name:           "apagar",
		Aliases:        []string{"del"},
		Description:    "Apaga a mensagem respondida (admins)",
		Usage:          "!apagar (respondendo a mensagem)",
		Category:       "grupo",
		AdminOnly:      true,
		NeedsQuotedMsg: true,
		Handler: func(ctx context.Context, cmdCtx *domain.CommandContext) (domain.Result, error) {
			quoted := cmdCtx.Message.Quoted
			key := evolution.MessageKey{
				RemoteJID:   cmdCtx.ChatID(),
				ID:          quoted.ID,
				Participant: quoted.AuthorID,
			}

			if err := deps.Transport.DeleteMessage(ctx, key); err != nil {
				deps.Logger.Warn("Failed to delete quoted message",
					zap.String("chat", cmdCtx.ChatID()),
					zap.Error(err),
				)
				return domain.Reply(domain.NewTextMessage(cmdCtx.ChatID(),
					"Não consegui apagar essa mensagem.")), nil
			}

			return domain.NoReply(), nil
		},
	}
}
