package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/pkg/coze"
)

type stubInterviewRepo struct {
	interviews map[uint]models.Interview
	messages   []models.InterviewMessage
	nextID     uint
}

func newStubInterviewRepo() *stubInterviewRepo {
	return &stubInterviewRepo{interviews: map[uint]models.Interview{}, nextID: 1}
}

func (s *stubInterviewRepo) Create(ctx context.Context, interview *models.Interview) error {
	if interview.ID == 0 {
		interview.ID = s.nextID
		s.nextID++
	}
	s.interviews[interview.ID] = *interview
	return nil
}

func (s *stubInterviewRepo) Update(ctx context.Context, interview *models.Interview) error {
	s.interviews[interview.ID] = *interview
	return nil
}

func (s *stubInterviewRepo) GetByID(ctx context.Context, id uint) (models.Interview, error) {
	interview, ok := s.interviews[id]
	if !ok {
		return models.Interview{}, gorm.ErrRecordNotFound
	}
	return interview, nil
}

func (s *stubInterviewRepo) ListByUser(ctx context.Context, userID uint) ([]models.Interview, error) {
	var result []models.Interview
	for _, interview := range s.interviews {
		if interview.UserID == userID {
			result = append(result, interview)
		}
	}
	return result, nil
}

func (s *stubInterviewRepo) AppendMessage(ctx context.Context, message *models.InterviewMessage) error {
	message.ID = uint(len(s.messages) + 1)
	s.messages = append(s.messages, *message)
	return nil
}

type stubChatBackend struct {
	result   coze.ChatResult
	err      error
	prompts  []string
	convIDs  []string
	received []string
}

func (s *stubChatBackend) ChatAndWait(ctx context.Context, userID, content, conversationID string) (coze.ChatResult, error) {
	s.prompts = append(s.prompts, content)
	s.convIDs = append(s.convIDs, conversationID)
	s.received = append(s.received, userID)
	if s.err != nil {
		return coze.ChatResult{}, s.err
	}
	return s.result, nil
}

func newInterviewFixture(chat *stubChatBackend) (InterviewService, *stubInterviewRepo) {
	repo := newStubInterviewRepo()
	svc := NewInterviewService(repo, chat, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	return svc, repo
}

func TestInterviewFirstTurnFramesTopicAndStoresConversation(t *testing.T) {
	chat := &stubChatBackend{result: coze.ChatResult{
		Answer:         "Tell me about virtual destructors.",
		ConversationID: "conv-1",
		Status:         coze.StatusCompleted,
	}}
	svc, repo := newInterviewFixture(chat)

	created, err := svc.Create(context.Background(), 7, dto.InterviewCreateRequest{Topic: "C++ object lifetime"})
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), created.ID, 7, dto.InterviewMessageRequest{Message: "I'm ready."})
	require.NoError(t, err)
	require.Equal(t, coze.RoleAssistant, reply.Role)
	require.Equal(t, "Tell me about virtual destructors.", reply.Content)

	// the first turn frames the topic and starts a fresh conversation
	require.Len(t, chat.prompts, 1)
	require.Contains(t, chat.prompts[0], "C++ object lifetime")
	require.Contains(t, chat.prompts[0], "I'm ready.")
	require.Equal(t, "", chat.convIDs[0])
	require.Equal(t, "7", chat.received[0])

	require.Equal(t, "conv-1", repo.interviews[created.ID].ConversationID)

	// both sides of the turn are persisted in order
	require.Len(t, repo.messages, 2)
	require.Equal(t, coze.RoleUser, repo.messages[0].Role)
	require.Equal(t, coze.RoleAssistant, repo.messages[1].Role)
}

func TestInterviewLaterTurnsReuseConversation(t *testing.T) {
	chat := &stubChatBackend{result: coze.ChatResult{
		Answer:         "Good. Next question.",
		ConversationID: "conv-1",
		Status:         coze.StatusCompleted,
	}}
	svc, _ := newInterviewFixture(chat)

	created, err := svc.Create(context.Background(), 7, dto.InterviewCreateRequest{Topic: "pointers"})
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), created.ID, 7, dto.InterviewMessageRequest{Message: "first"})
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), created.ID, 7, dto.InterviewMessageRequest{Message: "second"})
	require.NoError(t, err)

	require.Equal(t, "conv-1", chat.convIDs[1])
	// later turns send the raw message, history lives remotely
	require.Equal(t, "second", chat.prompts[1])
}

func TestInterviewBackendFailure(t *testing.T) {
	chat := &stubChatBackend{err: errors.New("boom")}
	svc, repo := newInterviewFixture(chat)

	created, err := svc.Create(context.Background(), 7, dto.InterviewCreateRequest{Topic: "pointers"})
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), created.ID, 7, dto.InterviewMessageRequest{Message: "hello"})
	require.ErrorIs(t, err, ErrInterviewerUnavailable)

	// the user's message is still recorded
	require.Len(t, repo.messages, 1)
	require.Equal(t, coze.RoleUser, repo.messages[0].Role)
}

func TestInterviewOwnershipAndLifecycle(t *testing.T) {
	chat := &stubChatBackend{result: coze.ChatResult{Answer: "ok", Status: coze.StatusCompleted}}
	svc, _ := newInterviewFixture(chat)

	created, err := svc.Create(context.Background(), 7, dto.InterviewCreateRequest{Topic: "pointers"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.ID, 8)
	require.ErrorIs(t, err, ErrInterviewForbidden)

	_, err = svc.Get(context.Background(), 99, 7)
	require.ErrorIs(t, err, ErrInterviewNotFound)

	finished, err := svc.Finish(context.Background(), created.ID, 7)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStatusFinished, finished.Status)

	_, err = svc.SendMessage(context.Background(), created.ID, 7, dto.InterviewMessageRequest{Message: "still there?"})
	require.ErrorIs(t, err, ErrInterviewFinished)
}
