package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/parser-service/internal/config"
	"github.com/jonathan/parser-service/internal/observability"
	"github.com/jonathan/parser-service/internal/service"
)

var (
	parseOutputFile  string
	parseVerbose     bool
	parseConcurrency int
	parseHighQuality bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse documents from the command line",
	Long:  "Send local documents to DaXtra CVX and write the decoded results as JSON.",
}

var parseFullCmd = &cobra.Command{
	Use:   "full <file>...",
	Short: "Parse resumes in a single pass",
	Long:  "Parse one or more resumes. Several files are parsed concurrently and reported per file.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParseFull,
}

var parseTwoPhaseCmd = &cobra.Command{
	Use:   "two-phase <file>",
	Short: "Parse a resume personal data first, then in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runParseTwoPhase,
}

var parseVacancyCmd = &cobra.Command{
	Use:   "vacancy <file>",
	Short: "Parse a job description",
	Args:  cobra.ExactArgs(1),
	RunE:  runParseVacancy,
}

var parseHTMLCmd = &cobra.Command{
	Use:   "html <file>",
	Short: "Convert a document to HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runParseHTML,
}

func init() {
	parseCmd.PersistentFlags().StringVarP(&parseOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	parseCmd.PersistentFlags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print a human-readable summary to stderr")
	parseFullCmd.Flags().IntVar(&parseConcurrency, "concurrency", 4, "Maximum number of files parsed at once")
	parseHTMLCmd.Flags().BoolVar(&parseHighQuality, "high-quality", false, "Use the high quality conversion endpoint")

	parseCmd.AddCommand(parseFullCmd, parseTwoPhaseCmd, parseVacancyCmd, parseHTMLCmd)
	rootCmd.AddCommand(parseCmd)
}

// parseEnv is what every parse subcommand needs.
type parseEnv struct {
	parser  service.Parser
	printer *observability.Printer
}

func newParseEnv(cmd *cobra.Command) (*parseEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	return &parseEnv{
		parser:  newParser(cfg, nil, logger),
		printer: observability.NewPrinter(cmd.ErrOrStderr()),
	}, nil
}

// batchEntry is the per-file result of a multi-file parse.
type batchEntry struct {
	File   string                `json:"file"`
	Resume *service.ParsedResume `json:"resume,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func runParseFull(cmd *cobra.Command, args []string) error {
	env, err := newParseEnv(cmd)
	if err != nil {
		return err
	}
	resumes := service.NewResumeService(env.parser)

	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		parsed, err := resumes.ParseFull(cmd.Context(), data, filepath.Base(args[0]))
		if err != nil {
			return fmt.Errorf("failed to parse resume: %w", err)
		}
		if parseVerbose {
			env.printer.PrintCompetencies(args[0], parsed.Competencies)
		}
		return writeJSON(cmd, parsed)
	}

	docs := make([]service.Document, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		docs = append(docs, service.Document{Name: filepath.Base(path), Content: data})
	}

	results, err := resumes.ParseBatch(cmd.Context(), docs, parseConcurrency)
	if err != nil {
		return err
	}

	entries := make([]batchEntry, len(results))
	failed := 0
	for i, r := range results {
		entries[i] = batchEntry{File: args[i], Resume: r.Resume}
		if r.Err != nil {
			failed++
			entries[i].Error = r.Err.Error()
			if parseVerbose {
				env.printer.PrintFailure(args[i], r.Err)
			}
			continue
		}
		if parseVerbose {
			env.printer.PrintCompetencies(args[i], r.Resume.Competencies)
		}
	}
	if err := writeJSON(cmd, entries); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to parse", failed, len(results))
	}
	return nil
}

func runParseTwoPhase(cmd *cobra.Command, args []string) error {
	return runSingle(cmd, args[0], func(ctx context.Context, env *parseEnv, data []byte, name string) (any, error) {
		parsed, err := service.NewResumeService(env.parser).ParseTwoPhase(ctx, data, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse resume: %w", err)
		}
		if parseVerbose {
			env.printer.PrintCompetencies(args[0], parsed.Competencies)
		}
		return parsed, nil
	})
}

func runParseVacancy(cmd *cobra.Command, args []string) error {
	return runSingle(cmd, args[0], func(ctx context.Context, env *parseEnv, data []byte, name string) (any, error) {
		profile, err := service.NewVacancyService(env.parser).Parse(ctx, data, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse job description: %w", err)
		}
		return profile, nil
	})
}

func runParseHTML(cmd *cobra.Command, args []string) error {
	return runSingle(cmd, args[0], func(ctx context.Context, env *parseEnv, data []byte, name string) (any, error) {
		conv, err := service.NewConversionService(env.parser, nil).Convert(ctx, data, parseHighQuality, name)
		if err != nil {
			return nil, fmt.Errorf("failed to convert document: %w", err)
		}
		if parseVerbose {
			env.printer.PrintConversion(args[0], conv)
		}
		return conv, nil
	})
}

// runSingle reads one input file, runs fn and writes its result.
func runSingle(cmd *cobra.Command, path string, fn func(context.Context, *parseEnv, []byte, string) (any, error)) error {
	env, err := newParseEnv(cmd)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	result, err := fn(cmd.Context(), env, data, filepath.Base(path))
	if err != nil {
		return err
	}
	return writeJSON(cmd, result)
}

// writeJSON writes v as indented JSON to --out or stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	var out io.Writer = cmd.OutOrStdout()
	if parseOutputFile != "" {
		f, err := os.Create(parseOutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if parseOutputFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", parseOutputFile)
	}
	return nil
}
