// Package classifier defines the interface to the frozen edit-severity model.
//
// The model is an opaque, pre-trained artifact: it consumes the ordered
// feature triple (Word Mover's Distance, index-ratio, string-ratio) and emits
// a categorical label. Training, validation, and the model's internal scoring
// (support-vector machine or otherwise) are explicitly outside this system's
// concern — the decision layer treats whatever label comes back as final.
//
// Implementations live in subpackages:
//
//   - [github.com/transcriptlab/editcheck/pkg/classifier/onnx] — runs the
//     exported model through ONNX Runtime.
//
// The mock subpackage provides a scripted test double.
//
// Implementations must be safe for concurrent use.
package classifier

import "context"

// Classifier is the abstraction over the frozen classification model.
type Classifier interface {
	// Predict returns the label for the feature triple, in the fixed order
	// (WMD, index-ratio, string-ratio) the model was trained on. The label
	// space is opaque to callers; the production model emits "1" (minor) or
	// "2" (major), but this is not asserted here.
	//
	// Returns an error when the model cannot score the input or ctx is
	// cancelled; such errors are fatal for the row being classified.
	Predict(ctx context.Context, features [3]float64) (string, error)
}
