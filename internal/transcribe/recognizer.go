package transcribe

import (
	"context"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
)

// Recognizer turns an audio file into text plus per-word time offsets.
//
// Load is separated from Recognize so the engine can report model loading as
// its own stage and dedupe concurrent loads. Implementations must make Load
// safe to call more than once.
type Recognizer interface {
	Load(ctx context.Context) error
	Recognize(ctx context.Context, audioPath string, opts RecognizeOptions) (*types.TranscriptionResult, error)
	Close() error
}

type RecognizeOptions struct {
	LanguageCode string
	Model        string

	SampleRateHertz   int
	AudioChannelCount int

	// OnProgress, when set, receives coarse progress in [0,1] as recognition
	// advances. Implementations may call it from their own goroutines.
	OnProgress func(fraction float64)
}
