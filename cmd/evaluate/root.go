package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mersey-rowing/condition-checker/internal/config"
	"github.com/mersey-rowing/condition-checker/internal/domain"
)

type options struct {
	input      string
	limitsFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "evaluate",
		Short:        "Decide which boats may go out for a saved OpenWeather payload",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "OpenWeather JSON payload, - for stdin")
	cmd.PersistentFlags().StringVarP(&opts.limitsFile, "limits", "l", "", "YAML boat limits file (defaults to environment configuration)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log the decision steps to stderr")

	cmd.AddCommand(newLimitsCmd(&opts))
	return cmd
}

func newLimitsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Print the effective boat limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limits, err := loadLimits(opts.limitsFile)
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), limits)
		},
	}
}

func run(stdin io.Reader, stdout, stderr io.Writer, opts options) error {
	limits, err := loadLimits(opts.limitsFile)
	if err != nil {
		return err
	}

	payload, err := readInput(stdin, opts.input)
	if err != nil {
		return err
	}

	var resp domain.OpenWeatherResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	check, err := domain.CheckBoats(resp, limits, logger)
	if err != nil {
		return err
	}
	return writeIndented(stdout, check)
}

func loadLimits(path string) (domain.BoatLimits, error) {
	if path != "" {
		return config.LoadLimitsFile(path)
	}
	return config.LoadLimits()
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return b, nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
