package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/kws/pkg/audio/pcm"
	"github.com/haivivi/kws/pkg/cli"
	"github.com/haivivi/kws/pkg/clips"
)

var clipsCmd = &cobra.Command{
	Use:   "clips",
	Short: "Manage clip locations",
	Long: `Inspect a clip location and copy clips into it.

Examples:
  kws clips ls ./samples
  kws clips ls s3://audio/kws
  kws clips put s3://audio/kws yes_01.wav no_02.wav
  kws clips get s3://audio/kws 3 clip3.wav`,
}

// clipEntry is one row of 'clips ls' structured output.
type clipEntry struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
}

var clipsLsCmd = &cobra.Command{
	Use:   "ls <location>",
	Short: "List clips with their indexes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := openClipStore(args[0], false)
		if err != nil {
			return err
		}
		catalog, err := clips.Open(cmdContext(cmd), src, "")
		if err != nil {
			return err
		}

		if formatOutput != string(cli.FormatText) {
			entries := make([]clipEntry, catalog.Len())
			for i := range entries {
				entries[i] = clipEntry{Index: i, Name: catalog.Name(i)}
			}
			return cli.Output(entries, outputOptions(cmd))
		}

		w, closeOut, err := outputWriter(cmd)
		if err != nil {
			return err
		}
		defer closeOut()
		for i, name := range catalog.Names() {
			fmt.Fprintf(w, "%4d  %s\n", i, name)
		}
		return nil
	},
}

var clipsPutCmd = &cobra.Command{
	Use:   "put <location> <file>...",
	Short: "Upload clip files",
	Long: `Upload clip files to a clip location under their base names.
Files are checked to decode before upload.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)
		dst, err := openClipStore(args[0], true)
		if err != nil {
			return err
		}
		for _, path := range args[1:] {
			name := filepath.Base(path)
			if !clips.Supported(name) {
				return fmt.Errorf("%s: %w", name, clips.ErrUnsupportedFormat)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			buf, err := clips.Decode(name, data, pcm.DefaultSampleRate)
			if err != nil {
				return err
			}

			if err := dst.Put(ctx, name, bytes.NewReader(data)); err != nil {
				return fmt.Errorf("upload %s: %w", name, err)
			}
			cli.PrintSuccess(cmd.OutOrStdout(), "%s (%s)", name, cli.FormatDuration(buf.Duration()))
		}
		return nil
	},
}

var clipsGetRate int

var clipsGetCmd = &cobra.Command{
	Use:   "get <location> <index|name> <file>",
	Short: "Export a clip as the pipeline sees it",
	Long: `Export one clip as a mono PCM16 WAV file at the pipeline sample rate,
after decoding, downmixing and resampling.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)
		src, err := openClipStore(args[0], false)
		if err != nil {
			return err
		}
		catalog, err := clips.Open(ctx, src, "", clips.WithSampleRate(clipsGetRate))
		if err != nil {
			return err
		}
		i, ok := catalog.Index(args[1])
		if !ok {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: %s", clips.ErrClipNotFound, args[1])
			}
			i = n
		}
		buf, err := catalog.Load(ctx, i)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[2], clips.EncodeWAV(buf), 0o644); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "%s -> %s (%s @ %d Hz)",
			catalog.Name(i), args[2], cli.FormatDuration(buf.Duration()), catalog.SampleRate())
		return nil
	},
}

func init() {
	clipsGetCmd.Flags().IntVar(&clipsGetRate, "rate", pcm.DefaultSampleRate, "sample rate of the exported clip")
	clipsCmd.AddCommand(clipsLsCmd, clipsPutCmd, clipsGetCmd)
	rootCmd.AddCommand(clipsCmd)
}
