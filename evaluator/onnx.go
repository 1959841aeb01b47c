package evaluator

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/owulveryck/onnx-go"
	"github.com/owulveryck/onnx-go/backend/x/gorgonnx"
	"github.com/rs/zerolog/log"
	"gorgonia.org/tensor"

	"gomoku/game"
)

// ONNX runs an exported policy/value network. The model takes a single
// (1, 19, 19, 3) float32 input and produces the policy (1, 361) as output 0 and
// the value (1) as output 1.
type ONNX struct {
	mu      sync.Mutex
	backend *gorgonnx.Graph
	model   *onnx.Model
}

func LoadONNX(path string) (*ONNX, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ONNX model: %w", err)
	}
	e, err := NewONNX(data)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("model-size", len(data)).Msg("loaded onnx model")
	return e, nil
}

func NewONNX(data []byte) (*ONNX, error) {
	backend := gorgonnx.NewGraph()
	model := onnx.NewModel(backend)
	if err := model.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ONNX model: %w", err)
	}
	return &ONNX{backend: backend, model: model}, nil
}

func (e *ONNX) Infer(planes *game.Planes) (Prediction, error) {
	start := time.Now()
	defer func() {
		log.Debug().Dur("elapsed", time.Since(start)).Msg("onnx inference")
	}()

	input := tensor.New(tensor.WithShape(1, game.Size, game.Size, game.NumPlanes),
		tensor.WithBacking(planes.NHWC()))

	// The graph holds the input and output nodes, one inference at a time
	e.mu.Lock()
	defer e.mu.Unlock()

	e.model.SetInput(0, input)
	if err := e.backend.Run(); err != nil {
		return Prediction{}, fmt.Errorf("failed to run ONNX model: %w", err)
	}
	outputs, err := e.model.GetOutputTensors()
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to get output tensors: %w", err)
	}
	if len(outputs) < 2 {
		return Prediction{}, fmt.Errorf("expected policy and value outputs, got %d", len(outputs))
	}

	var pred Prediction
	policy, err := float32s(outputs[0])
	if err != nil {
		return Prediction{}, fmt.Errorf("policy output: %w", err)
	}
	if len(policy) != game.NumCells {
		return Prediction{}, fmt.Errorf("policy output has %d entries, want %d", len(policy), game.NumCells)
	}
	copy(pred.Policy[:], policy)

	value, err := float32s(outputs[1])
	if err != nil {
		return Prediction{}, fmt.Errorf("value output: %w", err)
	}
	if len(value) == 0 {
		return Prediction{}, errors.New("value output is empty")
	}
	pred.Value = value[0]
	return pred, nil
}

func float32s(t tensor.Tensor) ([]float32, error) {
	switch v := t.Data().(type) {
	case []float32:
		return v, nil
	case float32:
		return []float32{v}, nil
	default:
		return nil, fmt.Errorf("unexpected tensor data type %T", v)
	}
}
