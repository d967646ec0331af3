package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/pkg/sandbox"
)

// ErrRunnerUnavailable indicates no sandbox executor is configured.
var ErrRunnerUnavailable = errors.New("code runner unavailable")

// CodeRunConfig describes execution configuration knobs.
type CodeRunConfig struct {
	ExecutionTimeout time.Duration
	MemoryLimitMB    int
	CPUShares        int
}

// CodeRunService executes code without submitting it for review.
type CodeRunService interface {
	Run(ctx context.Context, payload dto.CodeRunRequest) (dto.CodeRunResponse, error)
}

type codeRunService struct {
	executor  sandbox.Executor
	validator *validator.Validate
	logger    zerolog.Logger
	config    CodeRunConfig
}

// NewCodeRunService constructs a code run service.
func NewCodeRunService(executor sandbox.Executor, validate *validator.Validate, logger zerolog.Logger, cfg CodeRunConfig) CodeRunService {
	return &codeRunService{
		executor:  executor,
		validator: validate,
		logger:    logger.With().Str("component", "code_run_service").Logger(),
		config:    cfg,
	}
}

func (s *codeRunService) Run(ctx context.Context, payload dto.CodeRunRequest) (dto.CodeRunResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CodeRunResponse{}, err
	}
	if s.executor == nil {
		return dto.CodeRunResponse{}, ErrRunnerUnavailable
	}

	result, execErr := s.executor.Execute(ctx, sandbox.Job{
		Language:      strings.ToLower(payload.Language),
		Source:        payload.Source,
		Stdin:         payload.Stdin,
		Timeout:       s.config.ExecutionTimeout,
		MemoryLimitMB: int64(s.config.MemoryLimitMB),
		CPUShares:     int64(s.config.CPUShares),
	})

	response := dto.CodeRunResponse{
		Phase:           string(result.Phase),
		Output:          result.Stdout,
		Error:           result.Stderr,
		ExitCode:        result.ExitCode,
		ExecutionTimeMs: result.Duration.Milliseconds(),
		MemoryUsedKB:    result.MemoryUsageBytes / 1024,
		TimedOut:        result.TimedOut,
	}

	// a compile failure is reported through the compiler's diagnostics
	if result.Phase == sandbox.PhaseCompile {
		response.Error = result.CompileLog
	}

	if execErr != nil && !result.TimedOut {
		s.logger.Error().Err(execErr).Msg("sandbox run failed")
		if response.Error == "" {
			response.Error = execErr.Error()
		}
	}

	return response, nil
}
