package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haivivi/kws/pkg/kwsserver"
)

var (
	serveFlags pipelineFlags
	serveAddr  string
	servePath  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over WebSocket",
	Long: `Serve the pipeline over WebSocket.

Every binary message is one clip of little-endian PCM16 mono audio at the
configured sample rate. The reply is the JSON report, or {"error": ...}.
Reports are saved to the result store unless --store - is given.

Examples:
  kws serve --model m.onnx --labels labels.txt --addr :8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, closer, err := serveFlags.buildPipeline()
		if err != nil {
			return err
		}
		defer closer.Close()

		opts := []kwsserver.Option{kwsserver.WithSampleRate(p.Config().SampleRate)}
		store, err := openResultStore()
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
			opts = append(opts, kwsserver.WithSink(store.Save))
		}

		return kwsserver.ListenAndServe(ctx, serveAddr, servePath, kwsserver.New(p, opts...))
	},
}

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&servePath, "path", "/ws", "WebSocket endpoint path")
	rootCmd.AddCommand(serveCmd)
}
