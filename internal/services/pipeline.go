package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/courseatlas/courseatlas-backend/internal/captions"
	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/library"
	"github.com/courseatlas/courseatlas-backend/internal/media"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
	"github.com/courseatlas/courseatlas-backend/internal/transcribe"
)

// Transcriber is the slice of the transcription engine the pipeline needs.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcribe.Request) (*types.TranscriptionResult, error)
}

// Summarizer never fails; see the summarize package.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) string
}

// TranscriptionPipeline drives one video through audio extraction,
// transcription, caption segmentation, and summarization, persisting the
// results on the video row. Segmentation and summarization run concurrently
// once the transcript exists; they are independent consumers of it.
type TranscriptionPipeline struct {
	log *logger.Logger

	store      *library.Store
	media      media.Extractor
	engine     Transcriber
	summarizer Summarizer
}

func NewTranscriptionPipeline(
	baseLog *logger.Logger,
	store *library.Store,
	extractor media.Extractor,
	engine Transcriber,
	summarizer Summarizer,
) *TranscriptionPipeline {
	return &TranscriptionPipeline{
		log:        baseLog.With("service", "TranscriptionPipeline"),
		store:      store,
		media:      extractor,
		engine:     engine,
		summarizer: summarizer,
	}
}

// Run processes the video end to end. Transcription failures propagate;
// summarization cannot fail. onProgress is advisory and may be nil.
func (p *TranscriptionPipeline) Run(ctx context.Context, videoID string, onProgress func(transcribe.Progress)) error {
	ctx = ctxutil.Default(ctx)

	video, err := p.store.GetVideo(ctx, videoID)
	if err != nil {
		return err
	}
	if video.Source.Kind != types.SourceLocalFile {
		return &apperr.UnsupportedMediaError{
			Source: video.Source.Ref,
			Err:    fmt.Errorf("only local files can be transcribed, source is %s", video.Source.Kind),
		}
	}

	audioPath := filepath.Join(os.TempDir(), videoID+".wav")
	audioPath, err = p.media.ExtractAudio(ctx, video.Source.Ref, audioPath, media.AudioExtractOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(audioPath) }()

	result, err := p.engine.Transcribe(ctx, transcribe.Request{
		AudioPath:  audioPath,
		OnProgress: onProgress,
	})
	if err != nil {
		return err
	}

	var cues []types.CaptionCue
	var summary string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cues = captions.Segment(result.Chunks)
		return nil
	})
	g.Go(func() error {
		summary = p.summarizer.Summarize(gctx, result.Text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if _, err := p.store.SaveTranscription(ctx, videoID, result.Text, cues); err != nil {
		return err
	}
	if _, err := p.store.SaveSummary(ctx, videoID, summary); err != nil {
		return err
	}

	p.log.Info("Pipeline finished",
		"video_id", videoID,
		"transcript_chars", len(result.Text),
		"cues", len(cues),
	)
	return nil
}
