package db

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"dealroom/pkg/metrics"
	"dealroom/pkg/otel"
)

type queryStartKey struct{}

type queryStart struct {
	at   time.Time
	sql  string
	span oteltrace.Span
}

// SlowQueryTracer 慢查询监控 Tracer，同时为每条语句创建 OpenTelemetry span
type SlowQueryTracer struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewSlowQueryTracer 创建慢查询 Tracer，阈值默认 100ms
func NewSlowQueryTracer(logger *zap.Logger, slowThreshold time.Duration) *SlowQueryTracer {
	if slowThreshold == 0 {
		slowThreshold = 100 * time.Millisecond
	}
	return &SlowQueryTracer{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

// TraceQueryStart implements pgx.QueryTracer.
func (t *SlowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx, span := otel.DBSpan(ctx, data.SQL)
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: time.Now(), sql: data.SQL, span: span})
}

// TraceQueryEnd implements pgx.QueryTracer.
func (t *SlowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	otel.EndDBSpan(start.span, data.Err)

	duration := time.Since(start.at)
	if duration <= t.slowThreshold {
		return
	}

	sql := truncateSQL(start.sql)
	t.logger.Warn("slow-query",
		zap.String("sql", sql),
		zap.Duration("took", duration),
		zap.String("command_tag", data.CommandTag.String()),
	)
	metrics.IncrementSlowQuery(sql, duration)
}

// truncateSQL 截断 SQL 语句（避免日志过长）
func truncateSQL(sql string) string {
	sql = strings.Join(strings.Fields(sql), " ")
	if sql == "" {
		return "unknown"
	}
	if len(sql) > 200 {
		return sql[:200] + "..."
	}
	return sql
}
