package coze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	chatDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cpplearn",
		Subsystem: "coze",
		Name:      "chat_duration_seconds",
		Help:      "Duration of non-streaming chat round trips",
	}, []string{"bot_id"})

	chatFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cpplearn",
		Subsystem: "coze",
		Name:      "chat_failures_total",
		Help:      "Number of chat rounds that ended in an error",
	}, []string{"bot_id", "reason"})

	pollExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cpplearn",
		Subsystem: "coze",
		Name:      "poll_budget_exhausted_total",
		Help:      "Number of chats whose polling budget ran out before completion",
	}, []string{"bot_id"})
)

// Config defines configuration options for the chat client.
type Config struct {
	BaseURL         string
	APIKey          string
	BotID           string
	PollInterval    time.Duration
	PollMaxAttempts int
	HTTPClient      *http.Client
	Logger          zerolog.Logger
}

// Client talks to a Coze-style asynchronous chat API.
type Client struct {
	http   *http.Client
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New builds a chat client using the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("coze api key is required")
	}
	if cfg.BotID == "" {
		return nil, fmt.Errorf("coze bot id is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.coze.cn/v1"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = 30
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	tracer := otel.Tracer("github.com/whrcat/cpplearn-api/pkg/coze")

	return &Client{
		http:   httpClient,
		cfg:    cfg,
		tracer: tracer,
		logger: logger.With().Str("component", "coze_client").Logger(),
		sleep:  sleepContext,
	}, nil
}

type chatMessagePayload struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

type chatPayload struct {
	BotID              string               `json:"bot_id"`
	UserID             string               `json:"user_id"`
	AdditionalMessages []chatMessagePayload `json:"additional_messages"`
	Stream             bool                 `json:"stream"`
	AutoSaveHistory    bool                 `json:"auto_save_history"`
	ConversationID     string               `json:"conversation_id,omitempty"`
}

type chatEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data Chat   `json:"data"`
}

type messageListEnvelope struct {
	Code int       `json:"code"`
	Msg  string    `json:"msg"`
	Data []Message `json:"data"`
}

// CreateChat submits a new user message for asynchronous processing. History
// is always persisted remotely so a conversation id can be reused for
// multi-turn continuity.
func (c *Client) CreateChat(ctx context.Context, userID, content, conversationID string) (Chat, error) {
	payload := chatPayload{
		BotID:  c.cfg.BotID,
		UserID: userID,
		AdditionalMessages: []chatMessagePayload{
			{Role: RoleUser, Content: content, ContentType: "text"},
		},
		Stream:          false,
		AutoSaveHistory: true,
		ConversationID:  conversationID,
	}

	var envelope chatEnvelope
	if err := c.postJSON(ctx, "/chat", payload, &envelope); err != nil {
		return Chat{}, &SubmissionError{Msg: "transport failure", Err: err}
	}
	if envelope.Code != 0 {
		return Chat{}, &SubmissionError{Code: envelope.Code, Msg: envelope.Msg}
	}

	return envelope.Data, nil
}

// RetrieveChat queries the current status of an in-flight chat.
func (c *Client) RetrieveChat(ctx context.Context, chatID, conversationID string) (Chat, error) {
	query := url.Values{}
	query.Set("chat_id", chatID)
	query.Set("conversation_id", conversationID)

	var envelope chatEnvelope
	if err := c.getJSON(ctx, "/chat/retrieve", query, &envelope); err != nil {
		return Chat{}, fmt.Errorf("retrieve chat: %w", err)
	}
	if envelope.Code != 0 {
		return Chat{}, fmt.Errorf("retrieve chat: code=%d msg=%s", envelope.Code, envelope.Msg)
	}

	return envelope.Data, nil
}

// ListMessages fetches the ordered transcript produced during a chat.
func (c *Client) ListMessages(ctx context.Context, chatID, conversationID string) ([]Message, error) {
	query := url.Values{}
	query.Set("chat_id", chatID)
	query.Set("conversation_id", conversationID)

	var envelope messageListEnvelope
	if err := c.getJSON(ctx, "/chat/message/list", query, &envelope); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if envelope.Code != 0 {
		return nil, fmt.Errorf("list messages: code=%d msg=%s", envelope.Code, envelope.Msg)
	}

	return envelope.Data, nil
}

// ChatAndWait submits a message, polls until the chat completes or the polling
// budget runs out, then fetches the assistant's final answer. When the budget
// is exhausted before completion the transcript is fetched anyway and whatever
// answer exists is returned; the caller sees the non-terminal status in the
// result.
func (c *Client) ChatAndWait(parent context.Context, userID, content, conversationID string) (ChatResult, error) {
	ctx, span := c.tracer.Start(parent, "coze.chat_and_wait", trace.WithAttributes(
		attribute.String("coze.bot_id", c.cfg.BotID),
	))
	defer span.End()

	start := time.Now()

	chat, err := c.CreateChat(ctx, userID, content, conversationID)
	if err != nil {
		chatFailures.WithLabelValues(c.cfg.BotID, "submit").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ChatResult{}, err
	}

	status := chat.Status
	for attempt := 0; attempt < c.cfg.PollMaxAttempts && !status.Terminal(); attempt++ {
		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			return ChatResult{}, err
		}

		polled, err := c.RetrieveChat(ctx, chat.ID, chat.ConversationID)
		if err != nil {
			c.logger.Warn().Err(err).Str("chat_id", chat.ID).Msg("chat status poll failed")
			continue
		}

		status = polled.Status
	}

	if status == StatusFailed {
		chatFailures.WithLabelValues(c.cfg.BotID, "remote").Inc()
		err := &JobFailedError{ChatID: chat.ID, ConversationID: chat.ConversationID}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ChatResult{}, err
	}

	if status != StatusCompleted {
		pollExhausted.WithLabelValues(c.cfg.BotID).Inc()
		c.logger.Warn().
			Str("chat_id", chat.ID).
			Str("status", string(status)).
			Msg("polling budget exhausted, fetching available messages")
	}

	messages, err := c.ListMessages(ctx, chat.ID, chat.ConversationID)
	if err != nil {
		chatFailures.WithLabelValues(c.cfg.BotID, "fetch").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ChatResult{}, err
	}

	chatDuration.WithLabelValues(c.cfg.BotID).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("coze.status", string(status)))

	return ChatResult{
		Answer:         lastAnswer(messages),
		ConversationID: chat.ConversationID,
		Status:         status,
	}, nil
}

// lastAnswer selects the final assistant answer from a transcript, skipping
// intermediate tool and reasoning messages.
func lastAnswer(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleAssistant && messages[i].Type == MessageTypeAnswer {
			return messages[i].Content
		}
	}
	return ""
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
