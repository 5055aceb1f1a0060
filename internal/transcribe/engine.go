package transcribe

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type Stage string

const (
	StageIdle         Stage = "idle"
	StagePreparing    Stage = "preparing"
	StageLoadingModel Stage = "loading_model"
	StageTranscribing Stage = "transcribing"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// Progress is advisory. Listeners drive UI from it; correctness never
// depends on any update being delivered.
type Progress struct {
	Stage    Stage   `json:"stage"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
}

type Request struct {
	AudioPath    string
	LanguageCode string

	// OnProgress receives stage transitions and coarse progress. May be nil.
	OnProgress func(Progress)
}

// Engine serializes transcription requests through a single slot. The
// recognizer holds loaded model/client state, so two in-flight requests would
// race on it; a second request queues until the first finishes. The model is
// loaded once on first use, deduped across concurrent first requests.
type Engine struct {
	log *logger.Logger
	rec Recognizer

	slot      chan struct{}
	loadGroup singleflight.Group
	loaded    atomic.Bool

	mu    sync.Mutex
	stage Stage
}

func NewEngine(baseLog *logger.Logger, rec Recognizer) *Engine {
	return &Engine{
		log:   baseLog.With("service", "TranscriptionEngine"),
		rec:   rec,
		slot:  make(chan struct{}, 1),
		stage: StageIdle,
	}
}

// Stage returns the engine's current stage, for status endpoints.
func (e *Engine) Stage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stage
}

func (e *Engine) setStage(s Stage) {
	e.mu.Lock()
	e.stage = s
	e.mu.Unlock()
}

func report(req Request, stage Stage, progress float64, message string) {
	if req.OnProgress != nil {
		req.OnProgress(Progress{Stage: stage, Progress: progress, Message: message})
	}
}

// Transcribe runs one request to completion or failure. There is no partial
// resume: a failed request is retried from scratch by the caller if at all.
// Cancellation via ctx is honored while queued and between stages.
func (e *Engine) Transcribe(ctx context.Context, req Request) (*types.TranscriptionResult, error) {
	ctx = ctxutil.Default(ctx)
	if req.AudioPath == "" {
		return nil, &apperr.TranscriptionError{Stage: "prepare", Err: fmt.Errorf("audio path required")}
	}

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, &apperr.TranscriptionError{Stage: "queue", Err: ctx.Err()}
	}
	defer func() { <-e.slot }()

	e.setStage(StagePreparing)
	report(req, StagePreparing, 0, "preparing request")

	if err := e.ensureLoaded(ctx, req); err != nil {
		e.fail(req, err)
		return nil, err
	}

	e.setStage(StageTranscribing)
	report(req, StageTranscribing, 0, "transcribing")

	res, err := e.rec.Recognize(ctx, req.AudioPath, RecognizeOptions{
		LanguageCode: req.LanguageCode,
		OnProgress: func(fraction float64) {
			report(req, StageTranscribing, fraction, "transcribing")
		},
	})
	if err != nil {
		wrapped := err
		var terr *apperr.TranscriptionError
		if !stderrors.As(err, &terr) {
			wrapped = &apperr.TranscriptionError{Stage: "transcribe", Err: err}
		}
		e.fail(req, wrapped)
		return nil, wrapped
	}

	e.setStage(StageDone)
	report(req, StageDone, 1, "done")
	e.setStage(StageIdle)

	e.log.Info("Transcription complete",
		"audio_path", req.AudioPath,
		"chars", len(res.Text),
		"chunks", len(res.Chunks),
	)
	return res, nil
}

// ensureLoaded loads the recognizer model exactly once. Concurrent callers
// collapse onto one load; later requests skip it entirely.
func (e *Engine) ensureLoaded(ctx context.Context, req Request) error {
	if e.loaded.Load() {
		return nil
	}

	e.setStage(StageLoadingModel)
	report(req, StageLoadingModel, 0, "loading model")

	_, err, _ := e.loadGroup.Do("load", func() (any, error) {
		if err := e.rec.Load(ctx); err != nil {
			return nil, err
		}
		e.loaded.Store(true)
		return nil, nil
	})
	if err != nil {
		var terr *apperr.TranscriptionError
		if stderrors.As(err, &terr) {
			return err
		}
		return &apperr.TranscriptionError{Stage: "load", Err: err}
	}

	report(req, StageLoadingModel, 1, "model ready")
	return nil
}

func (e *Engine) fail(req Request, err error) {
	e.setStage(StageFailed)
	report(req, StageFailed, 0, err.Error())
	e.setStage(StageIdle)
	e.log.Error("Transcription failed", "audio_path", req.AudioPath, "error", err)
}
