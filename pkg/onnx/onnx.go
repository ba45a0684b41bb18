// Package onnx runs keyword-spotting models with ONNX Runtime.
//
// The runtime is loaded from a shared library at run time through
// github.com/yalue/onnxruntime_go. Call [Init] once per process before
// creating models:
//
//	if err := onnx.Init(""); err != nil { // falls back to $ONNXRUNTIME_SHARED_LIBRARY_PATH
//	    return err
//	}
//	model, _ := onnx.NewModel(onnx.ModelConfig{Path: "kws_micronet.onnx"})
//	defer model.Close()
//
// # Tensors
//
// A [Model] preallocates its input and output tensors when it is created.
// The slices exposed through [Model.InputTensor] and [Model.OutputTensor]
// are the memory ONNX Runtime reads from and writes to, so features
// assembled into the input are visible to the next RunInference without a
// copy.
//
// # Thread Safety
//
// Init is safe for concurrent use. A Model is not: its tensors are shared
// between calls.
package onnx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// LibraryPathEnv names the environment variable consulted by Init when no
// library path is given.
const LibraryPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// ErrNoRuntime is returned when no ONNX Runtime library is configured.
var ErrNoRuntime = errors.New("onnx: runtime library not configured")

var initMu sync.Mutex

// Init loads the ONNX Runtime shared library and creates the global
// environment. An empty libPath falls back to $ONNXRUNTIME_SHARED_LIBRARY_PATH.
// Calling Init again after a successful call is a no-op.
func Init(libPath string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libPath == "" {
		libPath = os.Getenv(LibraryPathEnv)
	}
	if libPath == "" {
		return fmt.Errorf("%w: set --ort-lib or $%s", ErrNoRuntime, LibraryPathEnv)
	}
	if _, err := os.Stat(libPath); err != nil {
		return fmt.Errorf("onnx: runtime library: %w", err)
	}

	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnx: initialize environment: %w", err)
	}
	slog.Debug("onnx: runtime initialized", "lib", libPath)
	return nil
}

// Initialized reports whether Init has succeeded.
func Initialized() bool {
	return ort.IsInitialized()
}

// Shutdown destroys the global environment. Models must be closed first.
func Shutdown() error {
	initMu.Lock()
	defer initMu.Unlock()
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}
