package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lexiqai/intro-scorer/internal/observability"
	"github.com/lexiqai/intro-scorer/internal/scoring"
	"github.com/lexiqai/intro-scorer/internal/sentiment"
	"github.com/lexiqai/intro-scorer/internal/textproc"
)

var (
	errBlankTranscript = errors.New("transcript is empty")
	errBadDuration     = errors.New("duration must be a non-negative number of seconds")
	errBadOutput       = errors.New("output must be json or yaml")
)

type evaluateOptions struct {
	duration    float64
	output      string
	grammarCase string
	fillerMode  string
	sentiment   string
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "introscore",
		Short:        "Score a spoken self-introduction transcript",
		SilenceUsage: true,
		Version:      observability.Version,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log evaluation details to stderr")

	logger := func(cmd *cobra.Command) zerolog.Logger {
		lvl := zerolog.WarnLevel
		if verbose {
			lvl = zerolog.DebugLevel
		}
		out := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen, NoColor: true}
		return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	}

	root.AddCommand(newEvaluateCmd(logger), newRubricCmd())
	return root
}

func newEvaluateCmd(logger func(*cobra.Command) zerolog.Logger) *cobra.Command {
	opts := evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate [file|-]",
		Short: "Score a transcript read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runEvaluate(cmd, logger(cmd), path, opts)
		},
	}

	f := cmd.Flags()
	f.Float64VarP(&opts.duration, "duration", "d", 60, "speaking time in seconds")
	f.StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	f.StringVar(&opts.grammarCase, "grammar-case", string(scoring.CaseNormalized), "text the grammar checks run on: normalized or original")
	f.StringVar(&opts.fillerMode, "filler-mode", string(scoring.FillerToken), "filler matching: token or phrase")
	f.StringVar(&opts.sentiment, "sentiment", sentiment.EngineVADER, "sentiment engine: vader or lexicon")
	return cmd
}

func runEvaluate(cmd *cobra.Command, logger zerolog.Logger, path string, opts evaluateOptions) error {
	if math.IsNaN(opts.duration) || math.IsInf(opts.duration, 0) || opts.duration < 0 {
		return fmt.Errorf("%w: %v", errBadDuration, opts.duration)
	}
	output := strings.ToLower(opts.output)
	if output != "json" && output != "yaml" {
		return fmt.Errorf("%w: %q", errBadOutput, opts.output)
	}
	caseSource, err := scoring.ParseCaseSource(opts.grammarCase)
	if err != nil {
		return err
	}
	fillerMode, err := scoring.ParseFillerMode(opts.fillerMode)
	if err != nil {
		return err
	}
	analyzer, err := sentiment.NewEngine(opts.sentiment)
	if err != nil {
		return err
	}

	transcript, err := readTranscript(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	evaluator := scoring.NewEvaluator(
		scoring.WithAnalyzer(analyzer),
		scoring.WithCaseSource(caseSource),
		scoring.WithFillerMode(fillerMode),
	)
	report := evaluator.Analyze(transcript, opts.duration)

	logger.Debug().
		Str("source", path).
		Float64("duration_seconds", opts.duration).
		Int("word_count", report.Stats.WordCount).
		Float64("overall_score", report.OverallScore).
		Msg("Transcript evaluated")

	return writeReport(cmd.OutOrStdout(), output, report)
}

// readTranscript reads path, or stdin when path is "-".
func readTranscript(stdin io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}

	text, err := textproc.DecodeUTF8(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errBlankTranscript
	}
	return text, nil
}

func writeReport(w io.Writer, output string, report scoring.Report) error {
	if output == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func newRubricCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rubric",
		Short: "Print the scoring rubric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GROUP\tCRITERION\tKEY\tRANGE")
			for _, c := range scoring.Criteria() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d-%d\n", c.Group, c.Label, c.Key, c.Min, c.Max)
			}
			fmt.Fprintf(tw, "\t\tTOTAL\t%d\n", scoring.MaxScore)
			return tw.Flush()
		},
	}
}
