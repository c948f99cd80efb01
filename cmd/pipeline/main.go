package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"retailflow/internal/app"
	"retailflow/internal/config"
	"retailflow/internal/operations"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one pipeline run and returns the process exit code:
// 0 when the run reached done, 1 otherwise.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "optional YAML configuration file")
	projectRoot := fs.String("project-root", "", "project root holding data/ and pipeline/ (overrides configuration)")
	skipValidation := fs.Bool("skip-validation", false, "skip the validation stage and the quality gate")
	strictGate := fs.Bool("strict-gate", false, "use the strict success-rate threshold for the quality gate")
	asJSON := fs.Bool("json", false, "print the structured result as JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := loadConfig(*configFile, *projectRoot)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}
	if *strictGate {
		cfg.Pipeline.StrictGate = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "initialization error: %v\n", err)
		return 1
	}
	defer func() {
		if err := application.Close(context.WithoutCancel(ctx)); err != nil {
			application.Logger.Warn("shutdown_error", slog.String("error", err.Error()))
		}
	}()

	res := application.RunOnce(ctx, operations.RunOptions{SkipValidation: *skipValidation})
	printResult(stdout, res, *asJSON)
	if !res.Success {
		return 1
	}
	return 0
}

func loadConfig(configFile, projectRoot string) (*config.Config, error) {
	if projectRoot != "" {
		// env and file values are resolved against the flag
		if err := os.Setenv(config.EnvPrefix+"_PIPELINE_PROJECT_ROOT", projectRoot); err != nil {
			return nil, err
		}
	}
	return config.Load(configFile)
}

func printResult(w io.Writer, res operations.Result, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
		return
	}

	if res.Success {
		fmt.Fprintf(w, "Pipeline completed successfully in %.1fs (run %s)\n", res.ExecutionTime, res.RunID)
		if v := res.Stats.Validation; v != nil {
			fmt.Fprintf(w, "Validation: %d/%d tests passed (%.1f%%)\n", v.PassedTests, v.TotalTests, v.OverallSuccessRate)
		}
		for _, f := range res.Stats.FilesCreated {
			fmt.Fprintf(w, "  %s\n", f)
		}
		return
	}
	fmt.Fprintf(w, "Pipeline failed in state %s after %.1fs (run %s)\n", res.FinalState, res.ExecutionTime, res.RunID)
	fmt.Fprintf(w, "Error [%s]: %s\n", res.ErrorType, res.Error)
}
