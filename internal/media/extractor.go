package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

// Extractor is the glue around the ffmpeg/ffprobe system binaries.
//
// REQUIRED BINARIES in the runtime:
// - ffmpeg for video -> mono 16kHz audio
// - ffprobe for duration probing
//
// Extraction is synchronous; it belongs in the transcription pipeline, not in
// request handlers.
type Extractor interface {
	AssertReady(ctx context.Context) error

	ExtractAudio(ctx context.Context, videoPath string, outPath string, opts AudioExtractOptions) (string, error)
	ProbeDuration(ctx context.Context, videoPath string) (float64, error)

	// Helper for callers who only have bytes:
	WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error)
}

type AudioExtractOptions struct {
	SampleRateHz int
	Channels     int
	Format       string // "wav" or "flac"
}

// Containers ffmpeg reliably demuxes in this deployment. Anything else fails
// fast with an UnsupportedMediaError instead of a cryptic ffmpeg exit code.
var supportedExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
	".m4v":  true,
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
}

type extractor struct {
	log *logger.Logger

	ffmpegPath  string
	ffprobePath string

	workRoot string

	defaultTimeout time.Duration
}

func New(log *logger.Logger) Extractor {
	slog := log.With("service", "MediaExtractor")
	return &extractor{
		log:            slog,
		ffmpegPath:     "ffmpeg",
		ffprobePath:    "ffprobe",
		workRoot:       "/tmp/courseatlas-media",
		defaultTimeout: 10 * time.Minute,
	}
}

func (m *extractor) AssertReady(ctx context.Context) error {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, bin := range []string{m.ffmpegPath, m.ffprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
		}
	}
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return fmt.Errorf("create workRoot: %w", err)
	}
	return nil
}

func (m *extractor) WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error) {
	_ = ctxutil.Default(ctx)
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("mkdir workRoot: %w", err)
	}
	h := sha256.Sum256(data)
	base := hex.EncodeToString(h[:])[:16]
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	path := filepath.Join(m.workRoot, fmt.Sprintf("%s%s", base, suffix))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", func() {}, fmt.Errorf("write temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(path) }
	return path, cleanup, nil
}

// ExtractAudio strips the video track and resamples the audio for speech
// recognition. Defaults are mono at 16kHz, the rate recognizer models expect.
func (m *extractor) ExtractAudio(ctx context.Context, videoPath string, outPath string, opts AudioExtractOptions) (string, error) {
	ctx = ctxutil.Default(ctx)
	if videoPath == "" {
		return "", fmt.Errorf("videoPath required")
	}
	if outPath == "" {
		return "", fmt.Errorf("outPath required")
	}
	if ext := strings.ToLower(filepath.Ext(videoPath)); !supportedExtensions[ext] {
		return "", &apperr.UnsupportedMediaError{
			Source: videoPath,
			Err:    fmt.Errorf("unsupported container %q", ext),
		}
	}
	if err := m.AssertReady(ctx); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir outPath dir: %w", err)
	}

	sr := opts.SampleRateHz
	if sr <= 0 {
		sr = 16000
	}
	ch := opts.Channels
	if ch <= 0 {
		ch = 1
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "wav"
	}
	if format != "wav" && format != "flac" {
		return "", fmt.Errorf("unsupported audio format: %s", format)
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", strconv.Itoa(ch),
		"-ar", strconv.Itoa(sr),
		"-f", format, outPath,
	}

	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("ffmpeg extract audio interrupted: %w", ctxErr)
		}
		// A nonzero ffmpeg exit means the input could not be decoded (corrupt
		// container, unknown codec, no audio track). That is terminal for this
		// file, not an infrastructure failure.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cause := fmt.Errorf("decode failed (exit %d): %s", exitErr.ExitCode(), lastLine(out))
			if looksLikeNoAudio(string(out)) {
				cause = fmt.Errorf("no decodable audio stream")
			}
			return "", &apperr.UnsupportedMediaError{Source: videoPath, Err: cause}
		}
		return "", fmt.Errorf("ffmpeg extract audio failed: %w; out=%s", err, string(out))
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("audio output missing at %s", outPath)
	}
	return outPath, nil
}

// ProbeDuration reads the container duration in seconds via ffprobe.
func (m *extractor) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	ctx = ctxutil.Default(ctx)
	if videoPath == "" {
		return 0, fmt.Errorf("videoPath required")
	}
	if _, err := exec.LookPath(m.ffprobePath); err != nil {
		return 0, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w; out=%s", err, string(out))
	}

	raw := strings.TrimSpace(string(out))
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("ffprobe returned unusable duration %q", raw)
	}
	return d, nil
}

// lastLine picks the final non-empty line of ffmpeg's chatter, which is where
// it prints the actual failure.
func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return "no output"
}

func looksLikeNoAudio(ffmpegOut string) bool {
	lower := strings.ToLower(ffmpegOut)
	return strings.Contains(lower, "does not contain any stream") ||
		strings.Contains(lower, "output file does not contain any stream") ||
		strings.Contains(lower, "stream map 'a' matches no streams")
}
