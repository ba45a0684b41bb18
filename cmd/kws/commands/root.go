package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/kws/pkg/cli"
)

var (
	// Global flags
	verbose      bool
	formatOutput string
	outputFile   string
	storeDir     string
)

var rootCmd = &cobra.Command{
	Use:   "kws",
	Short: "Sliding-window keyword spotting",
	Long: `kws - classify short audio clips with a keyword-spotting model.

A clip is cut into overlapping one-second windows. Each window is turned
into an MFCC feature matrix, run through the model, and the scores above
the threshold are reported with the window's timestamp.

Clips are read from a local directory or an S3 prefix (s3://bucket/prefix).
Supported formats are raw PCM16 (.pcm, .raw) and 16-bit WAV.

Runs are stored in ~/.kws/results unless --store says otherwise.

Examples:
  # Classify every clip in a directory, starting from the first
  kws classify --model kws_micronet_m.onnx --labels labels.txt --clips ./samples --all

  # Classify clip 3 of an S3 prefix and print JSON
  kws classify --model m.onnx --labels labels.txt --clips s3://audio/kws --index 3 --format json

  # Inspect stored runs
  kws results list
  kws results get <run-id>`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd)
		_, err := cli.ParseFormat(formatOutput)
		return err
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVarP(&formatOutput, "format", "f", "text", "output format: text, yaml, json")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "", "result store directory (default ~/.kws/results, \"-\" disables)")
}

func setupLogging(cmd *cobra.Command) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// outputOptions builds cli.OutputOptions from the global flags.
func outputOptions(cmd *cobra.Command) cli.OutputOptions {
	f, _ := cli.ParseFormat(formatOutput)
	opts := cli.OutputOptions{Format: f, File: outputFile}
	if outputFile == "" {
		opts.Writer = cmd.OutOrStdout()
	}
	return opts
}

// styles returns colored styles for terminals and plain styles otherwise.
func styles(cmd *cobra.Command) cli.Styles {
	if f, ok := cmd.OutOrStdout().(*os.File); ok && f == os.Stdout {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			return cli.NewStyles(cli.DefaultTheme)
		}
	}
	return cli.PlainStyles()
}
