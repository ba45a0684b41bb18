package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/haivivi/kws/pkg/audio/mfcc"
	"github.com/haivivi/kws/pkg/cli"
	"github.com/haivivi/kws/pkg/kws"
	"github.com/haivivi/kws/pkg/onnx"
	"github.com/haivivi/kws/pkg/resultstore"
	"github.com/haivivi/kws/pkg/storage"
)

// pipelineFlags are shared by commands that build a pipeline.
type pipelineFlags struct {
	configPath  string
	modelPath   string
	modelConfig string
	labelsPath  string
	ortLib      string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "pipeline config YAML (default ~/.kws/config.yaml if present)")
	cmd.Flags().StringVar(&f.modelPath, "model", "", "ONNX model file")
	cmd.Flags().StringVar(&f.modelConfig, "model-config", "", "ONNX model config YAML (tensor names, types, quantization)")
	cmd.Flags().StringVar(&f.labelsPath, "labels", "", "labels file, one label per line (required)")
	cmd.Flags().StringVar(&f.ortLib, "ort-lib", "", "ONNX Runtime shared library (default $"+onnx.LibraryPathEnv+")")
}

// openModel loads the classification model. Tests replace it.
var openModel = func(cfg onnx.ModelConfig, libPath string) (kws.Model, io.Closer, error) {
	if err := onnx.Init(libPath); err != nil {
		return nil, nil, err
	}
	m, err := onnx.NewModel(cfg)
	if err != nil {
		onnx.Shutdown()
		return nil, nil, err
	}
	return m, closerFunc(func() error {
		return errors.Join(m.Close(), onnx.Shutdown())
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// loadConfig returns the pipeline config from path, from ~/.kws/config.yaml
// if path is empty and that file exists, or the defaults.
func loadConfig(path string) (kws.Config, error) {
	if path == "" {
		if p, err := cli.NewPaths(); err == nil {
			path = p.ConfigFileIfExists()
		}
	}
	if path == "" {
		return kws.DefaultConfig(), nil
	}
	slog.Debug("loading config", "path", path)
	return kws.LoadConfig(path)
}

func (f *pipelineFlags) modelConfigFromFlags() (onnx.ModelConfig, error) {
	var mc onnx.ModelConfig
	if f.modelConfig != "" {
		data, err := os.ReadFile(f.modelConfig)
		if err != nil {
			return mc, fmt.Errorf("read model config: %w", err)
		}
		if err := yaml.Unmarshal(data, &mc); err != nil {
			return mc, fmt.Errorf("parse model config %s: %w", f.modelConfig, err)
		}
	}
	if f.modelPath != "" {
		mc.Path = f.modelPath
	}
	if mc.Path == "" {
		return mc, fmt.Errorf("--model or a model config with a path is required")
	}
	return mc, nil
}

// buildPipeline assembles config, labels, MFCC front-end and model into a
// pipeline. The returned closer releases the model.
func (f *pipelineFlags) buildPipeline() (*kws.Pipeline, io.Closer, error) {
	if f.labelsPath == "" {
		return nil, nil, fmt.Errorf("--labels is required")
	}
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	labels, err := cli.LoadLabels(f.labelsPath)
	if err != nil {
		return nil, nil, err
	}
	mc, err := f.modelConfigFromFlags()
	if err != nil {
		return nil, nil, err
	}
	extractor, err := mfcc.New(cfg.MFCC())
	if err != nil {
		return nil, nil, err
	}

	model, closer, err := openModel(mc, f.ortLib)
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}
	p, err := kws.New(cfg, model, extractor, labels)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	slog.Debug("pipeline ready",
		"model", mc.Path,
		"labels", len(labels),
		"rows", cfg.Rows(),
		"features", cfg.NumFeatures,
		"reuse", cfg.Reusable())
	return p, closer, nil
}

// openClipStore resolves a directory or s3:// location to a store.
// S3 endpoints for self-hosted stores come from KWS_S3_ENDPOINT. A local
// directory is created only when create is set.
func openClipStore(loc string, create bool) (storage.Store, error) {
	l, err := storage.ParseLocation(loc)
	if err != nil {
		return nil, err
	}
	if l.Scheme == "s3" {
		endpoint := os.Getenv("KWS_S3_ENDPOINT")
		client := storage.NewS3Client(storage.S3Options{
			Region:    os.Getenv("AWS_REGION"),
			Endpoint:  endpoint,
			PathStyle: endpoint != "",
		})
		slog.Debug("using s3 clip store", "bucket", l.Bucket, "prefix", l.Path, "endpoint", endpoint)
		return storage.NewS3(client, l.Bucket, l.Path), nil
	}
	if !create {
		fi, err := os.Stat(l.Path)
		if err != nil {
			return nil, fmt.Errorf("clip location: %w", err)
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("clip location %s: not a directory", l.Path)
		}
	}
	local, err := storage.NewLocal(l.Path)
	if err != nil {
		return nil, err
	}
	return local, nil
}

// openResultStore opens the result store selected by --store. It returns
// nil when storing is disabled.
func openResultStore() (*resultstore.Store, error) {
	dir := storeDir
	if dir == "-" {
		return nil, nil
	}
	if dir == "" {
		p, err := cli.NewPaths()
		if err != nil {
			return nil, err
		}
		if err := p.EnsureResultsDir(); err != nil {
			return nil, err
		}
		dir = p.ResultsDir()
	}
	b, err := resultstore.OpenBadger(resultstore.BadgerOptions{Dir: dir, Logger: slog.Default()})
	if err != nil {
		return nil, err
	}
	return resultstore.New(b), nil
}

// outputWriter returns the destination for text output and a function to
// close it.
func outputWriter(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outputFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
