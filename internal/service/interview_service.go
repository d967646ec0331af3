package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/internal/repository"
	"github.com/whrcat/cpplearn-api/pkg/coze"
)

// ErrInterviewNotFound indicates the session cannot be located.
var ErrInterviewNotFound = errors.New("interview not found")

// ErrInterviewForbidden indicates the caller does not own the session.
var ErrInterviewForbidden = errors.New("forbidden")

// ErrInterviewFinished indicates the session no longer accepts messages.
var ErrInterviewFinished = errors.New("interview already finished")

// ErrInterviewerUnavailable is the user-safe failure for remote chat errors.
var ErrInterviewerUnavailable = errors.New("interviewer temporarily unavailable")

// ChatBackend is the remote conversational capability the interview flow
// needs. *coze.Client satisfies it.
type ChatBackend interface {
	ChatAndWait(ctx context.Context, userID, content, conversationID string) (coze.ChatResult, error)
}

// InterviewService manages mock-interview sessions.
type InterviewService interface {
	Create(ctx context.Context, userID uint, payload dto.InterviewCreateRequest) (dto.InterviewResponse, error)
	Get(ctx context.Context, id uint, userID uint) (dto.InterviewResponse, error)
	ListMine(ctx context.Context, userID uint) ([]dto.InterviewResponse, error)
	SendMessage(ctx context.Context, id uint, userID uint, payload dto.InterviewMessageRequest) (dto.InterviewMessageResponse, error)
	Finish(ctx context.Context, id uint, userID uint) (dto.InterviewResponse, error)
}

type interviewService struct {
	interviews repository.InterviewRepository
	chat       ChatBackend
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewInterviewService constructs an interview service.
func NewInterviewService(interviews repository.InterviewRepository, chat ChatBackend, validate *validator.Validate, logger zerolog.Logger) InterviewService {
	return &interviewService{
		interviews: interviews,
		chat:       chat,
		validator:  validate,
		logger:     logger.With().Str("component", "interview_service").Logger(),
	}
}

func (s *interviewService) Create(ctx context.Context, userID uint, payload dto.InterviewCreateRequest) (dto.InterviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InterviewResponse{}, err
	}

	interview := models.Interview{
		UserID: userID,
		Topic:  strings.TrimSpace(payload.Topic),
		Status: models.InterviewStatusActive,
	}
	if err := s.interviews.Create(ctx, &interview); err != nil {
		return dto.InterviewResponse{}, err
	}

	return dto.NewInterviewResponse(interview), nil
}

func (s *interviewService) Get(ctx context.Context, id uint, userID uint) (dto.InterviewResponse, error) {
	interview, err := s.load(ctx, id, userID)
	if err != nil {
		return dto.InterviewResponse{}, err
	}
	return dto.NewInterviewResponse(interview), nil
}

func (s *interviewService) ListMine(ctx context.Context, userID uint) ([]dto.InterviewResponse, error) {
	interviews, err := s.interviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.InterviewResponse, 0, len(interviews))
	for _, interview := range interviews {
		responses = append(responses, dto.NewInterviewResponse(interview))
	}
	return responses, nil
}

// SendMessage forwards one user turn to the remote interviewer and stores both
// sides of the exchange. The remote conversation id captured on the first turn
// keeps later turns on the same conversation.
func (s *interviewService) SendMessage(ctx context.Context, id uint, userID uint, payload dto.InterviewMessageRequest) (dto.InterviewMessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InterviewMessageResponse{}, err
	}

	interview, err := s.load(ctx, id, userID)
	if err != nil {
		return dto.InterviewMessageResponse{}, err
	}
	if interview.Status != models.InterviewStatusActive {
		return dto.InterviewMessageResponse{}, ErrInterviewFinished
	}

	userMessage := models.InterviewMessage{
		InterviewID: interview.ID,
		Role:        coze.RoleUser,
		Content:     payload.Message,
	}
	if err := s.interviews.AppendMessage(ctx, &userMessage); err != nil {
		return dto.InterviewMessageResponse{}, err
	}

	prompt := s.turnPrompt(interview, payload.Message)
	result, err := s.chat.ChatAndWait(ctx, strconv.FormatUint(uint64(userID), 10), prompt, interview.ConversationID)
	if err != nil {
		s.logger.Error().Err(err).Uint("interview_id", interview.ID).Msg("interview turn failed")
		return dto.InterviewMessageResponse{}, fmt.Errorf("%w: %v", ErrInterviewerUnavailable, err)
	}

	if interview.ConversationID == "" && result.ConversationID != "" {
		interview.ConversationID = result.ConversationID
		if err := s.interviews.Update(ctx, &interview); err != nil {
			s.logger.Error().Err(err).Uint("interview_id", interview.ID).Msg("failed to store conversation id")
		}
	}

	reply := models.InterviewMessage{
		InterviewID: interview.ID,
		Role:        coze.RoleAssistant,
		Content:     result.Answer,
	}
	if err := s.interviews.AppendMessage(ctx, &reply); err != nil {
		return dto.InterviewMessageResponse{}, err
	}

	return dto.NewInterviewMessageResponse(reply), nil
}

func (s *interviewService) Finish(ctx context.Context, id uint, userID uint) (dto.InterviewResponse, error) {
	interview, err := s.load(ctx, id, userID)
	if err != nil {
		return dto.InterviewResponse{}, err
	}

	if interview.Status != models.InterviewStatusFinished {
		interview.Status = models.InterviewStatusFinished
		if err := s.interviews.Update(ctx, &interview); err != nil {
			return dto.InterviewResponse{}, err
		}
	}

	return dto.NewInterviewResponse(interview), nil
}

func (s *interviewService) load(ctx context.Context, id uint, userID uint) (models.Interview, error) {
	interview, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Interview{}, ErrInterviewNotFound
		}
		return models.Interview{}, err
	}

	if interview.UserID != userID {
		return models.Interview{}, ErrInterviewForbidden
	}

	return interview, nil
}

// turnPrompt frames the first turn of a session; later turns rely on the
// remotely persisted conversation history.
func (s *interviewService) turnPrompt(interview models.Interview, message string) string {
	if interview.ConversationID != "" {
		return message
	}
	return fmt.Sprintf("You are conducting a technical interview about %s. Ask one question at a time and follow up on the candidate's answers.\n\nCandidate: %s", interview.Topic, message)
}
