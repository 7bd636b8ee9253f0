package command

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/moothz/ravena-go/internal/constants"
	"github.com/moothz/ravena-go/internal/domain"
	"github.com/moothz/ravena-go/internal/service/database"
	"go.uber.org/zap"
)

// Reactor applies emoji feedback to the originating message. Reactions are
// best-effort: a failure must never abort command execution.
type Reactor interface {
	React(ctx context.Context, msg *domain.Message, emoji string) error
}

// UsageReporter receives per-dispatch telemetry. May be nil.
type UsageReporter interface {
	RecordDispatch(ctx context.Context, report database.DispatchReport)
}

// Dispatcher enforces a command's preconditions in a fixed order, gates on
// cooldown, runs the handler and normalizes its result into an ordered slice
// of envelopes for the delivery path. Nothing escapes the dispatch boundary
// as an error: every failure mode ends in an envelope or a log line.
type Dispatcher struct {
	reactor  Reactor
	reporter UsageReporter
	logger   *zap.Logger
	now      func() time.Time
}

func NewDispatcher(reactor Reactor, reporter UsageReporter, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		reactor:  reactor,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Dispatch runs one resolved command against one inbound message. args are
// the tokens after the command token. group may be nil for private chats.
//
// Precondition order: group exclusivity (silent), admin, args, media, quoted
// message, and cooldown last so a malformed invocation never consumes
// cooldown budget. Structural failures touch neither usage stats nor
// cooldown records.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *domain.Message, args []string, cmd *domain.Command, group *domain.Group) []*domain.ReturnMessage {
	if !cmd.AllowedIn(msg.ChatID) {
		// The command does not exist for this conversation.
		d.logger.Debug("Command not available in conversation",
			zap.String("command", cmd.Name),
			zap.String("chat", msg.ChatID),
		)
		return nil
	}

	cmdCtx := domain.NewCommandContext(msg, args, group)

	if cmd.AdminOnly && !cmdCtx.IsAdmin(msg.AuthorID) {
		return d.reject(ctx, msg, cmd, "Este comando é restrito aos administradores do grupo.")
	}

	if cmd.NeedsArgs {
		min := cmd.MinArgs
		if min < 1 {
			min = 1
		}
		if len(args) < min {
			text := fmt.Sprintf("Este comando precisa de pelo menos %d argumento(s).", min)
			if cmd.Usage != "" {
				text += " Uso: " + cmd.Usage
			}
			return d.reject(ctx, msg, cmd, text)
		}
	}

	if cmd.NeedsMedia && !msg.HasAnyMedia() {
		return d.reject(ctx, msg, cmd, "Este comando precisa de uma mídia. Envie ou responda a uma mensagem com mídia.")
	}

	if cmd.NeedsQuotedMsg && !msg.IsReply() {
		return d.reject(ctx, msg, cmd, "Este comando precisa ser usado respondendo a uma mensagem.")
	}

	if status := CheckCooldown(cmd, msg.AuthorID, d.now()); status.OnCooldown {
		d.logger.Debug("Command on cooldown",
			zap.String("command", cmd.Name),
			zap.String("user", msg.AuthorID),
			zap.Int("remaining_s", status.RemainingSeconds),
		)
		return d.reject(ctx, msg, cmd,
			fmt.Sprintf("Comando em cooldown. Tente novamente em %d segundos.", status.RemainingSeconds))
	}

	// From here on the invocation counts, even if the handler fails.
	cmd.TrackUsage(d.now())

	d.react(ctx, msg, reactionOrDefault(cmd.Reactions.Before, constants.DefaultReactions.Before))

	start := d.now()
	result, err := d.execute(ctx, cmd, cmdCtx)
	duration := d.now().Sub(start)

	d.report(cmd, msg, err == nil, duration)

	if err != nil {
		d.logger.Error("Command handler failed",
			zap.String("command", cmd.Name),
			zap.String("chat", msg.ChatID),
			zap.String("user", msg.AuthorID),
			zap.Error(err),
		)
		d.react(ctx, msg, reactionOrDefault(cmd.Reactions.Error, constants.DefaultReactions.Error))
		return []*domain.ReturnMessage{
			domain.NewTextMessage(msg.ChatID, fmt.Sprintf("Erro ao executar o comando *%s*.", cmd.Name)),
		}
	}

	d.react(ctx, msg, reactionOrDefault(cmd.Reactions.After, constants.DefaultReactions.After))

	envelopes := result.Envelopes()
	valid := make([]*domain.ReturnMessage, 0, len(envelopes))
	for _, rm := range envelopes {
		if !rm.Valid() {
			d.logger.Warn("Dropping invalid return message",
				zap.String("command", cmd.Name),
				zap.String("chat", rm.ChatID),
			)
			continue
		}
		valid = append(valid, rm)
	}
	return valid
}

// execute invokes the handler with a panic boundary so a misbehaving command
// body cannot take down the dispatch loop.
func (d *Dispatcher) execute(ctx context.Context, cmd *domain.Command, cmdCtx *domain.CommandContext) (result domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
			d.logger.Error("Command handler panic",
				zap.String("command", cmd.Name),
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()
	return cmd.Handler(ctx, cmdCtx)
}

// reject applies the error reaction and produces the user-facing rejection
// envelope. Rejections never reach usage stats or cooldown records.
func (d *Dispatcher) reject(ctx context.Context, msg *domain.Message, cmd *domain.Command, text string) []*domain.ReturnMessage {
	d.react(ctx, msg, reactionOrDefault(cmd.Reactions.Error, constants.DefaultReactions.Error))
	return []*domain.ReturnMessage{domain.NewTextMessage(msg.ChatID, text)}
}

func (d *Dispatcher) react(ctx context.Context, msg *domain.Message, emoji string) {
	if d.reactor == nil || emoji == "" {
		return
	}
	if err := d.reactor.React(ctx, msg, emoji); err != nil {
		d.logger.Warn("Failed to apply reaction",
			zap.String("emoji", emoji),
			zap.String("chat", msg.ChatID),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) report(cmd *domain.Command, msg *domain.Message, success bool, duration time.Duration) {
	if d.reporter == nil {
		return
	}
	report := database.DispatchReport{
		Command:    cmd.Name,
		ChatID:     msg.ChatID,
		UserID:     msg.AuthorID,
		Success:    success,
		DurationMs: duration.Milliseconds(),
		OccurredAt: d.now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		d.reporter.RecordDispatch(ctx, report)
	}()
}

func reactionOrDefault(emoji, fallback string) string {
	if emoji != "" {
		return emoji
	}
	return fallback
}
