package transcribe

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type fakeRecognizer struct {
	mu        sync.Mutex
	loads     int
	loadErr   error
	recognize func(ctx context.Context, audioPath string) (*types.TranscriptionResult, error)

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeRecognizer) Load(ctx context.Context) error {
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()
	return f.loadErr
}

func (f *fakeRecognizer) Recognize(ctx context.Context, audioPath string, opts RecognizeOptions) (*types.TranscriptionResult, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxInFlight.Load()
		if cur <= prev || f.maxInFlight.CompareAndSwap(prev, cur) {
			break
		}
	}
	if f.recognize != nil {
		return f.recognize(ctx, audioPath)
	}
	if opts.OnProgress != nil {
		opts.OnProgress(0)
		opts.OnProgress(1)
	}
	return &types.TranscriptionResult{Text: "hello world", Chunks: []types.WordChunk{
		{Text: "hello", Timestamp: []float64{0, 0.5}},
		{Text: "world", Timestamp: []float64{0.5, 1.0}},
	}}, nil
}

func (f *fakeRecognizer) Close() error { return nil }

func newTestEngine(t *testing.T, rec Recognizer) *Engine {
	t.Helper()
	logg, err := logger.New("test")
	require.NoError(t, err)
	return NewEngine(logg, rec)
}

func TestTranscribeStageSequence(t *testing.T) {
	rec := &fakeRecognizer{}
	e := newTestEngine(t, rec)

	var stages []Stage
	res, err := e.Transcribe(context.Background(), Request{
		AudioPath:  "/tmp/a.wav",
		OnProgress: func(p Progress) { stages = append(stages, p.Stage) },
	})
	require.NoError(t, err)
	require.Equal(t, "hello world", res.Text)
	require.Len(t, res.Chunks, 2)

	require.Equal(t, []Stage{
		StagePreparing,
		StageLoadingModel,
		StageLoadingModel,
		StageTranscribing,
		StageTranscribing, // recognizer progress 0
		StageTranscribing, // recognizer progress 1
		StageDone,
	}, stages)
	require.Equal(t, StageIdle, e.Stage())
}

func TestModelLoadsOnce(t *testing.T) {
	rec := &fakeRecognizer{}
	e := newTestEngine(t, rec)

	for i := 0; i < 3; i++ {
		_, err := e.Transcribe(context.Background(), Request{AudioPath: "/tmp/a.wav"})
		require.NoError(t, err)
	}
	require.Equal(t, 1, rec.loads)
}

func TestConcurrentRequestsSerialize(t *testing.T) {
	rec := &fakeRecognizer{
		recognize: func(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
			time.Sleep(20 * time.Millisecond)
			return &types.TranscriptionResult{Text: "x"}, nil
		},
	}
	e := newTestEngine(t, rec)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Transcribe(context.Background(), Request{AudioPath: "/tmp/a.wav"})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), rec.maxInFlight.Load())
	require.Equal(t, 1, rec.loads)
}

func TestTranscribeFailureWrapsError(t *testing.T) {
	boom := errors.New("inference exploded")
	rec := &fakeRecognizer{
		recognize: func(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
			return nil, boom
		},
	}
	e := newTestEngine(t, rec)

	var failed bool
	_, err := e.Transcribe(context.Background(), Request{
		AudioPath: "/tmp/a.wav",
		OnProgress: func(p Progress) {
			if p.Stage == StageFailed {
				failed = true
			}
		},
	})

	var terr *apperr.TranscriptionError
	require.ErrorAs(t, err, &terr)
	require.ErrorIs(t, err, boom)
	require.True(t, failed)
	require.Equal(t, StageIdle, e.Stage())
}

func TestLoadFailureIsTerminalForRequestOnly(t *testing.T) {
	rec := &fakeRecognizer{loadErr: errors.New("weights missing")}
	e := newTestEngine(t, rec)

	_, err := e.Transcribe(context.Background(), Request{AudioPath: "/tmp/a.wav"})
	var terr *apperr.TranscriptionError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, "load", terr.Stage)

	// A later request retries the load from scratch.
	rec.loadErr = nil
	_, err = e.Transcribe(context.Background(), Request{AudioPath: "/tmp/a.wav"})
	require.NoError(t, err)
	require.Equal(t, 2, rec.loads)
}

func TestQueuedRequestHonorsCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	rec := &fakeRecognizer{
		recognize: func(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
			close(started)
			<-release
			return &types.TranscriptionResult{Text: "x"}, nil
		},
	}
	e := newTestEngine(t, rec)

	go func() {
		_, _ = e.Transcribe(context.Background(), Request{AudioPath: "/tmp/a.wav"})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Transcribe(ctx, Request{AudioPath: "/tmp/b.wav"})
	require.ErrorIs(t, err, context.Canceled)

	close(release)
}

func TestEmptyAudioPathRejected(t *testing.T) {
	e := newTestEngine(t, &fakeRecognizer{})
	_, err := e.Transcribe(context.Background(), Request{})
	var terr *apperr.TranscriptionError
	require.ErrorAs(t, err, &terr)
}
