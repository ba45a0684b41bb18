package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haivivi/kws/pkg/cli"
	"github.com/haivivi/kws/pkg/clips"
	"github.com/haivivi/kws/pkg/kws"
)

var (
	classifyFlags pipelineFlags
	clipsLocation string
	clipIndex     int
	classifyAll   bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify clips from a directory or S3 prefix",
	Long: `Classify one clip, or every clip starting from --index.

Clips are indexed in lexicographic order of their paths. With --all, the
run continues past the last clip and wraps around to the first, until
every clip has been classified once.

Each report is printed as it completes and saved to the result store.

Examples:
  kws classify --model m.onnx --labels labels.txt --clips ./samples
  kws classify --model m.onnx --labels labels.txt --clips ./samples --index 2 --all
  kws classify --model-config model.yaml --labels labels.txt --clips s3://audio/kws -f json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if clipsLocation == "" {
			return fmt.Errorf("--clips is required")
		}
		ctx := cmdContext(cmd)

		p, closer, err := classifyFlags.buildPipeline()
		if err != nil {
			return err
		}
		defer closer.Close()

		src, err := openClipStore(clipsLocation, false)
		if err != nil {
			return err
		}
		catalog, err := clips.Open(ctx, src, "", clips.WithSampleRate(p.Config().SampleRate))
		if err != nil {
			return err
		}
		if catalog.Len() == 0 {
			return fmt.Errorf("no clips found in %s", clipsLocation)
		}

		store, err := openResultStore()
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}

		w, closeOut, err := outputWriter(cmd)
		if err != nil {
			return err
		}
		defer closeOut()

		st := styles(cmd)
		return p.ClassifyClips(ctx, catalog, clipIndex, classifyAll, func(r kws.ClipReport) error {
			if store != nil {
				if err := store.Save(ctx, r); err != nil {
					return fmt.Errorf("save run %s: %w", r.RunID, err)
				}
				slog.Debug("run saved", "run_id", r.RunID)
			}
			return printReport(w, r, st)
		})
	},
}

func printReport(w io.Writer, r kws.ClipReport, st cli.Styles) error {
	if formatOutput == string(cli.FormatText) || formatOutput == "" {
		_, err := io.WriteString(w, cli.RenderResults(r, st))
		return err
	}
	f, _ := cli.ParseFormat(formatOutput)
	return cli.Output(r, cli.OutputOptions{Format: f, Writer: w})
}

func init() {
	classifyFlags.register(classifyCmd)
	classifyCmd.Flags().StringVar(&clipsLocation, "clips", "", "clip directory or s3://bucket/prefix (required)")
	classifyCmd.Flags().IntVar(&clipIndex, "index", 0, "index of the first clip to classify")
	classifyCmd.Flags().BoolVar(&classifyAll, "all", false, "classify every clip, starting from --index")
	rootCmd.AddCommand(classifyCmd)
}
