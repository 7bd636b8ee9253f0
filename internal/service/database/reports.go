package database

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DispatchReport is one row of command-usage telemetry. It exists for
// operator dashboards only; the in-process usage stats on each command are
// never persisted.
type DispatchReport struct {
	Command    string
	ChatID     string
	UserID     string
	Success    bool
	DurationMs int64
	OccurredAt time.Time
}

// UsageReportRepository sinks dispatch reports into postgres. Recording is
// best-effort: a failed insert is logged and dropped.
type UsageReportRepository struct {
	service *PostgresService
	logger  *zap.Logger
}

func NewUsageReportRepository(service *PostgresService, logger *zap.Logger) *UsageReportRepository {
	return &UsageReportRepository{
		service: service,
		logger:  logger,
	}
}

const createReportsTableSQL = `
CREATE TABLE IF NOT EXISTS dispatch_reports (
	id          BIGSERIAL PRIMARY KEY,
	command     TEXT NOT NULL,
	chat_id     TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	success     BOOLEAN NOT NULL,
	duration_ms BIGINT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dispatch_reports_command ON dispatch_reports (command);
CREATE INDEX IF NOT EXISTS idx_dispatch_reports_occurred ON dispatch_reports (occurred_at);
`

func (r *UsageReportRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.service.GetDB().ExecContext(ctx, createReportsTableSQL)
	if err != nil {
		r.logger.Error("Failed to ensure dispatch_reports schema", zap.Error(err))
	}
	return err
}

func (r *UsageReportRepository) RecordDispatch(ctx context.Context, report DispatchReport) {
	_, err := r.service.GetDB().ExecContext(ctx,
		`INSERT INTO dispatch_reports (command, chat_id, user_id, success, duration_ms, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		report.Command,
		report.ChatID,
		report.UserID,
		report.Success,
		report.DurationMs,
		report.OccurredAt,
	)
	if err != nil {
		r.logger.Warn("Failed to record dispatch report",
			zap.String("command", report.Command),
			zap.Error(err),
		)
	}
}

// CommandCounts aggregates per-command totals since the given time.
func (r *UsageReportRepository) CommandCounts(ctx context.Context, since time.Time) (map[string]int64, error) {
	rows, err := r.service.GetDB().QueryContext(ctx,
		`SELECT command, COUNT(*) FROM dispatch_reports
		 WHERE occurred_at >= $1 GROUP BY command`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var command string
		var count int64
		if err := rows.Scan(&command, &count); err != nil {
			return nil, err
		}
		counts[command] = count
	}
	return counts, rows.Err()
}
