// Command patchsim runs the partitioned SIR simulation core from a YAML
// scenario file, either to a final summary (run) or a dry validation check
// (validate-scenario).
package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ivanpozdin/patchsim/logging"
)

var (
	verbose  bool
	workers  string
	logLevel string

	// workerCount is the parsed value of --workers, set in PersistentPreRunE.
	workerCount int
)

var rootCmd = &cobra.Command{
	Use:   "patchsim",
	Short: "Partitioned SIR pandemic simulator",
	Long: `patchsim runs a discrete-time SIR simulation over a partitioned grid,
one goroutine per patch, synchronizing padding boundaries on a derived cycle.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		count, err := parseWorkers(workers)
		if err != nil {
			return err
		}
		workerCount = count
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().StringVarP(&workers, "workers", "j", "full", "informational worker count ('full', 'half', or an integer) reported in run summaries")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

// parseWorkers mirrors the 'full'/'half'/integer convention: this build
// doesn't itself cap goroutines by this count (one goroutine per patch is
// the model), but operators sizing a deployment still want to say how many
// cores they're budgeting for.
func parseWorkers(value string) (int, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	switch value {
	case "full":
		return runtime.NumCPU(), nil
	case "half":
		if n := runtime.NumCPU() / 2; n > 0 {
			return n, nil
		}
		return 1, nil
	default:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("--workers must be 'full', 'half', or a positive integer (got %q)", value)
		}
		return n, nil
	}
}

func newLogger() *logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	} else {
		switch strings.ToLower(logLevel) {
		case "debug":
			level = logging.LevelDebug
		case "warn":
			level = logging.LevelWarn
		case "error":
			level = logging.LevelError
		}
	}
	return logging.New(logging.Config{Level: level, Format: logging.FormatConsole})
}
