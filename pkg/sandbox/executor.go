package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	execDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cpplearn",
		Subsystem: "sandbox",
		Name:      "execution_duration_seconds",
		Help:      "Duration of sandboxed code executions",
		Buckets:   prometheus.DefBuckets,
	}, []string{"language"})

	execTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cpplearn",
		Subsystem: "sandbox",
		Name:      "execution_timeouts_total",
		Help:      "Number of executions that hit the timeout",
	}, []string{"language"})

	execFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cpplearn",
		Subsystem: "sandbox",
		Name:      "execution_failures_total",
		Help:      "Number of executions that resulted in an error",
	}, []string{"language"})

	compileFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cpplearn",
		Subsystem: "sandbox",
		Name:      "compile_failures_total",
		Help:      "Number of submissions that did not compile",
	}, []string{"language"})
)

// Phase names the stage of a job that produced its outcome.
type Phase string

const (
	PhaseCompile Phase = "compile"
	PhaseRun     Phase = "run"
)

// Job is a piece of C or C++ source to compile and run in isolation.
type Job struct {
	Language      string
	Source        string
	Stdin         string
	Timeout       time.Duration
	MemoryLimitMB int64
	CPUShares     int64
}

// Result reports the outcome of a job. CompileLog carries the compiler
// output for both phases; when Phase is PhaseCompile the program never ran.
type Result struct {
	Phase            Phase
	CompileLog       string
	Stdout           string
	Stderr           string
	ExitCode         int
	Duration         time.Duration
	TimedOut         bool
	MemoryUsageBytes int64
	CPUUsageNanosec  uint64
}

// Executor compiles and runs code jobs inside a sandbox.
type Executor interface {
	Execute(ctx context.Context, job Job) (Result, error)
}

// Config groups executor configuration values.
type Config struct {
	Host          string
	Timeout       time.Duration
	MemoryLimitMB int64
	CPUShares     int64
	WorkspaceRoot string
	Logger        zerolog.Logger
}

// DockerExecutor runs jobs in throwaway Docker containers with the workspace
// bind-mounted and the network disabled.
type DockerExecutor struct {
	client *client.Client
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewDockerExecutor constructs a Docker backed executor.
func NewDockerExecutor(cfg Config) (*DockerExecutor, error) {
	opts := []client.Opt{client.WithAPIVersionNegotiation()}
	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = os.TempDir()
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &DockerExecutor{
		client: cli,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/whrcat/cpplearn-api/pkg/sandbox"),
		logger: logger.With().Str("component", "sandbox").Logger(),
	}, nil
}

// Execute compiles the job's source and, when that succeeds, runs the binary
// against the job's stdin. A compile failure is a normal outcome, not an
// error: the result carries PhaseCompile and the compiler log.
func (e *DockerExecutor) Execute(parent context.Context, job Job) (Result, error) {
	tc, err := toolchainFor(job.Language)
	if err != nil {
		return Result{}, err
	}

	ctx, span := e.tracer.Start(parent, "sandbox.execute", trace.WithAttributes(
		attribute.String("sandbox.language", job.Language),
		attribute.String("docker.image", tc.image),
	))
	defer span.End()

	workspace, err := os.MkdirTemp(e.cfg.WorkspaceRoot, "job-")
	if err != nil {
		return Result{}, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	if err := os.WriteFile(filepath.Join(workspace, tc.sourceFile), []byte(job.Source), 0600); err != nil {
		return Result{}, fmt.Errorf("write source: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workspace, "stdin.txt"), []byte(job.Stdin), 0600); err != nil {
		return Result{}, fmt.Errorf("write stdin: %w", err)
	}

	raw, runErr := e.runContainer(ctx, span, job, tc, workspace)

	result := Result{
		Phase:            PhaseRun,
		Stdout:           raw.Stdout,
		Stderr:           raw.Stderr,
		ExitCode:         raw.ExitCode,
		Duration:         raw.Duration,
		TimedOut:         raw.TimedOut,
		MemoryUsageBytes: raw.MemoryUsageBytes,
		CPUUsageNanosec:  raw.CPUUsageNanosec,
	}

	// compile.log holds warnings on success and the full diagnostics on failure
	if log, readErr := os.ReadFile(filepath.Join(workspace, "compile.log")); readErr == nil {
		result.CompileLog = string(log)
	}

	if !result.TimedOut && raw.ExitCode == compileFailedExit {
		result.Phase = PhaseCompile
		result.ExitCode = 1
		compileFailures.WithLabelValues(job.Language).Inc()
	}

	return result, runErr
}

func (e *DockerExecutor) runContainer(ctx context.Context, span trace.Span, job Job, tc toolchain, workspace string) (Result, error) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = e.cfg.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	memoryMB := job.MemoryLimitMB
	if memoryMB <= 0 {
		memoryMB = e.cfg.MemoryLimitMB
	}
	cpuShares := job.CPUShares
	if cpuShares <= 0 {
		cpuShares = e.cfg.CPUShares
	}

	hostCfg := &container.HostConfig{
		AutoRemove:  false,
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:    memoryMB * 1024 * 1024,
			CPUShares: cpuShares,
		},
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: workspace,
			Target: "/workspace",
		}},
	}

	config := &container.Config{
		Image:        tc.image,
		Cmd:          []string{"sh", "-c", tc.script()},
		WorkingDir:   "/workspace",
		AttachStdout: true,
		AttachStderr: true,
	}

	start := time.Now()
	result := Result{}

	resp, err := e.client.ContainerCreate(ctx, config, hostCfg, &network.NetworkingConfig{}, nil, "")
	if err != nil {
		execFailures.WithLabelValues(job.Language).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("container create: %w", err)
	}

	containerID := resp.ID
	defer func() {
		removeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.client.ContainerRemove(removeCtx, containerID, container.RemoveOptions{Force: true}); err != nil {
			e.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to remove container")
		}
	}()

	if err := e.client.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		execFailures.WithLabelValues(job.Language).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("container start: %w", err)
	}

	statusCh, errCh := e.client.ContainerWait(ctx, containerID, container.WaitConditionNextExit)

	var waitErr error
	select {
	case err := <-errCh:
		waitErr = err
	case status := <-statusCh:
		result.ExitCode = int(status.StatusCode)
	case <-ctx.Done():
		waitErr = ctx.Err()
	}

	duration := time.Since(start)
	result.Duration = duration
	execDuration.WithLabelValues(job.Language).Observe(duration.Seconds())

	if waitErr != nil {
		if errors.Is(waitErr, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			result.TimedOut = true
			execTimeouts.WithLabelValues(job.Language).Inc()
			killCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := e.client.ContainerKill(killCtx, containerID, "KILL"); err != nil {
				e.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to kill timed out container")
			}
			span.RecordError(waitErr)
			span.SetStatus(codes.Error, "execution timed out")
		} else if !errors.Is(waitErr, context.Canceled) {
			execFailures.WithLabelValues(job.Language).Inc()
			span.RecordError(waitErr)
			span.SetStatus(codes.Error, waitErr.Error())
			return result, fmt.Errorf("container wait: %w", waitErr)
		}
	}

	logReader, err := e.client.ContainerLogs(context.WithoutCancel(ctx), containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err == nil {
		defer logReader.Close()
		stdout, stderr, err := splitDockerLogs(logReader)
		if err != nil {
			e.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to read container logs")
		} else {
			result.Stdout = stdout
			result.Stderr = stderr
		}
	} else {
		e.logger.Error().Err(err).Str("container_id", containerID).Msg("failed to fetch container logs")
	}

	statsCtx, cancelStats := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancelStats()
	stats, err := e.client.ContainerStatsOneShot(statsCtx, containerID)
	if err == nil {
		defer stats.Body.Close()
		var data types.StatsJSON
		if decodeErr := json.NewDecoder(stats.Body).Decode(&data); decodeErr == nil {
			result.MemoryUsageBytes = int64(data.MemoryStats.Usage)
			result.CPUUsageNanosec = data.CPUStats.CPUUsage.TotalUsage
		}
	}

	if result.TimedOut {
		return result, fmt.Errorf("execution timed out after %s", timeout)
	}

	return result, nil
}

func splitDockerLogs(reader io.Reader) (string, string, error) {
	var stdoutBuf, stderrBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, reader); err != nil {
		return "", "", err
	}
	return stdoutBuf.String(), stderrBuf.String(), nil
}

// Close shuts down the executor's underlying client.
func (e *DockerExecutor) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}
