package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type gcpRecognizer struct {
	log *logger.Logger

	mu     sync.Mutex
	client *speech.Client

	maxRetries int
}

// NewGCPRecognizer builds a Recognizer backed by Cloud Speech-to-Text long
// running recognition. The client is created lazily in Load so construction
// never touches the network.
func NewGCPRecognizer(log *logger.Logger) Recognizer {
	return &gcpRecognizer{
		log:        log.With("service", "gcp.Recognizer"),
		maxRetries: 4,
	}
}

func clientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	opts := []option.ClientOption{}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

func (r *gcpRecognizer) Load(ctx context.Context) error {
	ctx = ctxutil.Default(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return nil
	}

	c, err := speech.NewClient(ctx, clientOptionsFromEnv()...)
	if err != nil {
		return &apperr.TranscriptionError{Stage: "load", Err: fmt.Errorf("speech client: %w", err)}
	}
	r.client = c
	r.log.Info("Speech client ready")
	return nil
}

func (r *gcpRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *gcpRecognizer) Recognize(ctx context.Context, audioPath string, opts RecognizeOptions) (*types.TranscriptionResult, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	if err := r.Load(ctx); err != nil {
		return nil, err
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, &apperr.TranscriptionError{Stage: "read", Err: err}
	}
	if len(audio) == 0 {
		return &types.TranscriptionResult{Text: "", Chunks: []types.WordChunk{}}, nil
	}

	req := &speechpb.LongRunningRecognizeRequest{
		Config: buildRecognitionConfig(audioPath, opts),
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	if opts.OnProgress != nil {
		opts.OnProgress(0)
	}
	resp, err := r.retryLR(ctx, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := r.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, &apperr.TranscriptionError{Stage: "recognize", Err: err}
	}
	if opts.OnProgress != nil {
		opts.OnProgress(1)
	}

	return parseRecognizeResponse(resp), nil
}

func buildRecognitionConfig(audioPath string, opts RecognizeOptions) *speechpb.RecognitionConfig {
	lang := opts.LanguageCode
	if lang == "" {
		lang = "en-US"
	}
	sr := opts.SampleRateHertz
	if sr <= 0 {
		sr = 16000
	}
	ch := opts.AudioChannelCount
	if ch <= 0 {
		ch = 1
	}
	return &speechpb.RecognitionConfig{
		LanguageCode:               lang,
		Model:                      opts.Model,
		EnableAutomaticPunctuation: true,
		EnableWordTimeOffsets:      true,
		Encoding:                   inferEncoding(audioPath),
		SampleRateHertz:            int32(sr),
		AudioChannelCount:          int32(ch),
	}
}

func inferEncoding(audioPath string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(audioPath)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func parseRecognizeResponse(resp *speechpb.LongRunningRecognizeResponse) *types.TranscriptionResult {
	out := &types.TranscriptionResult{Chunks: []types.WordChunk{}}
	if resp == nil || len(resp.Results) == 0 {
		return out
	}

	var full strings.Builder
	for _, res := range resp.Results {
		if res == nil || len(res.Alternatives) == 0 || res.Alternatives[0] == nil {
			continue
		}
		alt := res.Alternatives[0]
		if strings.TrimSpace(alt.Transcript) == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(strings.TrimSpace(alt.Transcript))

		for _, w := range alt.Words {
			if w == nil || w.Word == "" {
				continue
			}
			out.Chunks = append(out.Chunks, types.WordChunk{
				Text:      w.Word,
				Timestamp: []float64{durToSec(w.StartTime), durToSec(w.EndTime)},
			})
		}
	}
	out.Text = strings.TrimSpace(full.String())
	return out
}

func durToSec(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}

func (r *gcpRecognizer) retryLR(ctx context.Context, fn func() (*speechpb.LongRunningRecognizeResponse, error)) (*speechpb.LongRunningRecognizeResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == r.maxRetries {
			break
		}
		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}
