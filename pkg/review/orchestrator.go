package review

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/whrcat/cpplearn-api/pkg/coze"
)

// Request describes one review to obtain from the remote reviewer.
type Request struct {
	// RequesterID attributes the remote conversation to the caller.
	RequesterID string
	// Prompt is the fully rendered instruction text, owned by the caller.
	Prompt string
	// ConversationID continues an existing remote conversation when set.
	ConversationID string
}

// Requester describes a component able to turn a prompt into a structured
// review. The returned string is the remote conversation id.
type Requester interface {
	RequestReview(ctx context.Context, req Request) (Review, string, error)
}

// Orchestrator obtains reviews through the asynchronous chat client: submit,
// poll, fetch the final answer, parse it into a Review.
type Orchestrator struct {
	client *coze.Client
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOrchestrator builds a review orchestrator on top of the chat client.
func NewOrchestrator(client *coze.Client, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		client: client,
		tracer: otel.Tracer("github.com/whrcat/cpplearn-api/pkg/review"),
		logger: logger.With().Str("component", "review_orchestrator").Logger(),
	}
}

// RequestReview runs one full review round trip. Submission and remote-job
// failures propagate as coze errors; unparseable answers wrap
// ErrMalformedReview. Nothing is retried at this layer.
func (o *Orchestrator) RequestReview(parent context.Context, req Request) (Review, string, error) {
	ctx, span := o.tracer.Start(parent, "review.request")
	defer span.End()

	result, err := o.client.ChatAndWait(ctx, req.RequesterID, req.Prompt, req.ConversationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Review{}, "", err
	}

	span.SetAttributes(attribute.String("review.chat_status", string(result.Status)))

	parsed, err := Parse(result.Answer)
	if err != nil {
		o.logger.Error().Err(err).Str("chat_status", string(result.Status)).Msg("review answer did not parse")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Review{}, result.ConversationID, err
	}

	return parsed, result.ConversationID, nil
}
