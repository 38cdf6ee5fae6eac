package llm

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/metrics"
)

const tracerName = "automationvault/llm"

// Instrumented records a span and request metrics around every call.
type Instrumented struct {
	provider string
	next     LLMClient
	tracer   trace.Tracer
}

func NewInstrumented(provider string, next LLMClient) *Instrumented {
	return &Instrumented{
		provider: provider,
		next:     next,
		tracer:   otel.Tracer(tracerName),
	}
}

func (i *Instrumented) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := buildOptions(opts)

	ctx, span := i.tracer.Start(ctx, "llm.generate", trace.WithAttributes(
		attribute.String("llm.provider", i.provider),
		attribute.Int("llm.max_tokens", o.MaxTokens),
		attribute.Int("llm.prompt_chars", len(prompt)),
	))
	defer span.End()

	start := time.Now()
	out, err := i.next.Generate(ctx, prompt, opts...)
	metrics.LLMRequestDuration.WithLabelValues(i.provider).Observe(time.Since(start).Seconds())
	metrics.LLMRequestsTotal.WithLabelValues(i.provider, statusLabel(err)).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.response_chars", len(out)))
	return out, nil
}

func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var ue *common.UpstreamError
	if errors.As(err, &ue) && ue.Status != 0 {
		return strconv.Itoa(ue.Status)
	}
	return "error"
}
