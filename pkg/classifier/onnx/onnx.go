// Package onnx runs the frozen edit-severity model through ONNX Runtime.
//
// The artifact is the production support-vector classifier exported to ONNX:
// a single float32 input of shape [1,3] (WMD, index-ratio, string-ratio) and
// an int64 label output of shape [1]. The model file is loaded once and the
// session is reused across Predict calls.
//
// ONNX Runtime loads a native shared library. Its location can be supplied
// via [Config.LibraryPath] when the default search path does not find it.
package onnx

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/transcriptlab/editcheck/pkg/classifier"
)

const (
	defaultInputName  = "float_input"
	defaultOutputName = "label"
)

// Compile-time assertion that Model satisfies the classifier interface.
var _ classifier.Classifier = (*Model)(nil)

// Config configures a [Model].
type Config struct {
	// ModelPath is the path to the exported .onnx model file. Required.
	ModelPath string

	// LibraryPath optionally points at the ONNX Runtime shared library
	// (libonnxruntime.so / onnxruntime.dll). Empty uses the default lookup.
	LibraryPath string

	// InputName is the graph input holding the feature triple.
	// Default: "float_input" (the skl2onnx export default).
	InputName string

	// OutputName is the graph output holding the predicted label.
	// Default: "label".
	OutputName string
}

// initOnce guards process-wide ONNX Runtime environment initialisation.
var initOnce sync.Once

// Model is the ONNX-backed [classifier.Classifier]. The underlying session
// reuses its input/output tensors, so calls are serialised internally; Model
// is safe for concurrent use.
type Model struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[int64]
}

// New loads the model at cfg.ModelPath and prepares a reusable scoring
// session. The returned Model holds native resources; call [Model.Close] when
// done.
func New(cfg Config) (*Model, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnx classifier: model path is required")
	}
	if cfg.InputName == "" {
		cfg.InputName = defaultInputName
	}
	if cfg.OutputName == "" {
		cfg.OutputName = defaultOutputName
	}

	var initErr error
	initOnce.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, fmt.Errorf("onnx classifier: initialise runtime: %w", initErr)
	}

	input, err := ort.NewTensor(ort.NewShape(1, 3), make([]float32, 3))
	if err != nil {
		return nil, fmt.Errorf("onnx classifier: create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("onnx classifier: create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("onnx classifier: load %q: %w", cfg.ModelPath, err)
	}

	return &Model{session: session, input: input, output: output}, nil
}

// Predict implements classifier.Classifier. The int64 label emitted by the
// model is rendered in decimal, matching the label strings of the decision
// layer ("1", "2").
func (m *Model) Predict(ctx context.Context, features [3]float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	in := m.input.GetData()
	for i, f := range features {
		in[i] = float32(f)
	}

	if err := m.session.Run(); err != nil {
		return "", fmt.Errorf("onnx classifier: run: %w", err)
	}

	out := m.output.GetData()
	if len(out) == 0 {
		return "", fmt.Errorf("onnx classifier: model produced no label")
	}
	return strconv.FormatInt(out[0], 10), nil
}

// Close releases the session and its tensors.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	if m.input != nil {
		m.input.Destroy()
		m.input = nil
	}
	if m.output != nil {
		m.output.Destroy()
		m.output = nil
	}
	return nil
}
