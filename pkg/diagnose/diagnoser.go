package diagnose

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nakamasato/dagster-diagnosis-agent/pkg/adk"
	"github.com/nakamasato/dagster-diagnosis-agent/pkg/dagster"
	"go.uber.org/zap"
)

// LogFetcher retrieves the error log text for one run URL.
type LogFetcher interface {
	FetchErrorLogText(ctx context.Context, runURL string) (string, error)
}

// Agent produces a diagnosis from error log text.
type Agent interface {
	DiagnoseLogs(ctx context.Context, logText string) (*adk.Diagnosis, error)
}

// Diagnoser runs the two-step pipeline: fetch error logs, then diagnose.
type Diagnoser struct {
	fetcher LogFetcher
	agent   Agent
	logger  *zap.Logger
}

// NewDiagnoser creates a new diagnoser.
func NewDiagnoser(fetcher LogFetcher, agent Agent, logger *zap.Logger) *Diagnoser {
	return &Diagnoser{
		fetcher: fetcher,
		agent:   agent,
		logger:  logger,
	}
}

// DiagnoseRun fetches the error logs for the run addressed by runURL and
// produces a diagnosis. A run without error-level events yields a Result
// with a nil Diagnosis.
func (d *Diagnoser) DiagnoseRun(ctx context.Context, runURL string) (*Result, error) {
	ref, err := dagster.ParseRunURL(runURL)
	if err != nil {
		return nil, err
	}

	d.logger.Info("Starting run diagnosis",
		zap.String("run_id", ref.RunID),
		zap.String("endpoint", ref.Endpoint()))

	logText, err := d.fetcher.FetchErrorLogText(ctx, runURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch error logs: %w", err)
	}

	result := &Result{
		RunID:       ref.RunID,
		Endpoint:    ref.Endpoint(),
		LogText:     logText,
		GeneratedAt: time.Now(),
	}

	if dagster.NoErrorLogs(logText) {
		d.logger.Info("No error logs found", zap.String("run_id", ref.RunID))
		return result, nil
	}
	result.ErrorLines = len(strings.Split(logText, "\n"))

	diagnosis, err := d.agent.DiagnoseLogs(ctx, logText)
	if err != nil {
		return nil, fmt.Errorf("failed to diagnose logs: %w", err)
	}
	result.Diagnosis = diagnosis

	d.logger.Info("Run diagnosis complete",
		zap.String("run_id", ref.RunID),
		zap.Int("error_lines", result.ErrorLines))
	return result, nil
}
