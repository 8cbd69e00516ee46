// Command dagster-diagnosis-agent fetches the error logs of a Dagster Cloud
// run and prints an LLM diagnosis of the failure.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nakamasato/dagster-diagnosis-agent/pkg/adk"
	"github.com/nakamasato/dagster-diagnosis-agent/pkg/config"
	"github.com/nakamasato/dagster-diagnosis-agent/pkg/dagster"
	"github.com/nakamasato/dagster-diagnosis-agent/pkg/diagnose"
	"github.com/nakamasato/dagster-diagnosis-agent/pkg/logger"
	"github.com/nakamasato/dagster-diagnosis-agent/pkg/slacknotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		envFile string
		timeout time.Duration
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "dagster-diagnosis-agent <run_url>",
		Short: "Diagnose a failed Dagster Cloud run from its error logs",
		Long: `Fetches the ERROR-level logs of a Dagster Cloud run via the deployment's
GraphQL API and produces a natural-language diagnosis of the failure.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], envFile, timeout, asJSON, verbose, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "path to an env file (default: ./.env if present)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall timeout (overrides FETCH_TIMEOUT)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the diagnosis as JSON")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "use development logging")
	return cmd
}

func run(ctx context.Context, runURL, envFile string, timeout time.Duration, asJSON, verbose bool, out io.Writer) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	newLogger := logger.New
	if verbose {
		newLogger = logger.NewDevelopment
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	if timeout == 0 {
		timeout = cfg.FetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fetcher := dagster.NewClient(cfg.DagsterCloudAPIToken, dagster.WithLogger(log))
	agent, err := adk.NewDiagnosisAgent(ctx, adk.Config{
		APIKey:    cfg.GeminiAPIKey,
		ModelName: cfg.ModelName,
	}, log)
	if err != nil {
		return err
	}

	diagnoser := diagnose.NewDiagnoser(fetcher, agent, log)
	result, err := diagnoser.DiagnoseRun(ctx, runURL)
	if err != nil {
		return err
	}

	if cfg.SlackEnabled() {
		notifier := slacknotify.New(cfg.SlackBotToken, cfg.SlackChannel, log)
		if err := notifier.NotifyResult(ctx, result); err != nil {
			log.Warn("Failed to post diagnosis to Slack", zap.Error(err))
		}
	}

	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	fmt.Fprint(out, result.Text())
	return nil
}
