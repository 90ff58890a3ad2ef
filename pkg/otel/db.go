package otel

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DBSpan 为数据库操作创建 span，操作名取 SQL 的首个关键字
func DBSpan(ctx context.Context, query string) (context.Context, trace.Span) {
	operation := "query"
	if fields := strings.Fields(query); len(fields) > 0 {
		operation = strings.ToLower(fields[0])
	}
	return Tracer().Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", query),
		),
	)
}

// EndDBSpan 记录结果并结束 span；ErrNoRows 不视为错误
func EndDBSpan(span trace.Span, err error) {
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, pgx.ErrNoRows):
		span.SetStatus(codes.Ok, "no rows")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
