package restyutil

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentOutput interface {
	Write(id string, contents string)
}

type messageIdKey struct{}

type instrumentCtx struct {
	output    InstrumentOutput
	tracer    trace.Tracer
	idcounter *uint64
}

// InstrumentClient wraps every request of client in a span and, when debug
// logging is enabled and output is not nil, writes the full request and
// response to output. `tracer` can be nil, it will default to a library
// name of "resty".
func InstrumentClient(client *resty.Client, tracer trace.Tracer, output InstrumentOutput) {
	if tracer == nil {
		tracer = otel.Tracer("resty")
	}

	var idcounter uint64
	i := instrumentCtx{output: output, tracer: tracer, idcounter: &idcounter}
	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

func (i instrumentCtx) dumping(ctx context.Context) bool {
	return i.output != nil && slog.Default().Enabled(ctx, slog.LevelDebug)
}

func (i instrumentCtx) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	ctx, span := i.tracer.Start(req.Context(), fmt.Sprintf("http %s", req.Method))
	span.SetAttributes(attribute.String("http.url", req.URL))

	if i.dumping(ctx) {
		messageId := strconv.FormatUint(atomic.AddUint64(i.idcounter, 1), 10)
		slog.DebugContext(
			ctx, "start request",
			"method", req.Method,
			"url", req.URL,
			"message_id", messageId,
		)
		ctx = context.WithValue(ctx, messageIdKey{}, messageId)
	}

	req.SetContext(ctx)
	return nil
}

func (i instrumentCtx) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(
		attribute.Int("http.status_code", res.StatusCode()),
		attribute.Int64("http.response_content_length", res.Size()),
	)
	if res.StatusCode() >= 400 {
		span.SetStatus(codes.Error, res.Status())
	}

	messageId, ok := ctx.Value(messageIdKey{}).(string)
	if ok && i.dumping(ctx) {
		i.output.Write(messageId, formatHttpMessage(res))
		slog.DebugContext(
			ctx, "request finished",
			"method", res.Request.Method,
			"url", res.Request.URL,
			"status", res.StatusCode(),
			"message_id", messageId,
		)
	}
	return nil
}

func (i instrumentCtx) onError(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, "request failed")

	attrs := []any{
		"method", req.Method,
		"url", req.URL,
		"err", err,
	}
	if messageId, ok := ctx.Value(messageIdKey{}).(string); ok {
		attrs = append(attrs, "message_id", messageId)
	}
	slog.DebugContext(ctx, "request failed", attrs...)
}
