package media

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

func testExtractor(t *testing.T) Extractor {
	t.Helper()
	logg, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(logg)
}

func TestExtractAudioRejectsUnsupportedContainer(t *testing.T) {
	m := testExtractor(t)

	_, err := m.ExtractAudio(context.Background(), "/tmp/slides.pptx", "/tmp/out.wav", AudioExtractOptions{})
	var unsupported *apperr.UnsupportedMediaError
	if !errors.As(err, &unsupported) {
		t.Fatalf("want UnsupportedMediaError, got %v", err)
	}
	if unsupported.Source != "/tmp/slides.pptx" {
		t.Fatalf("source = %q", unsupported.Source)
	}
}

func TestExtractAudioDecodeFailureIsUnsupportedMedia(t *testing.T) {
	// "false" stands in for ffmpeg: it exits nonzero the way ffmpeg does on a
	// corrupt or codec-unsupported input.
	for _, bin := range []string{"false", "true"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not in PATH", bin)
		}
	}

	logg, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	m := &extractor{
		log:            logg,
		ffmpegPath:     "false",
		ffprobePath:    "true",
		workRoot:       t.TempDir(),
		defaultTimeout: 10 * time.Second,
	}

	input := filepath.Join(t.TempDir(), "corrupt.mp4")
	if err := os.WriteFile(input, []byte("not a real mp4"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	_, err = m.ExtractAudio(context.Background(), input, filepath.Join(t.TempDir(), "out.wav"), AudioExtractOptions{})
	var unsupported *apperr.UnsupportedMediaError
	if !errors.As(err, &unsupported) {
		t.Fatalf("want UnsupportedMediaError, got %v", err)
	}
	if unsupported.Source != input {
		t.Fatalf("source = %q", unsupported.Source)
	}
}

func TestExtractAudioValidatesArguments(t *testing.T) {
	m := testExtractor(t)

	if _, err := m.ExtractAudio(context.Background(), "", "/tmp/out.wav", AudioExtractOptions{}); err == nil {
		t.Fatal("empty videoPath must error")
	}
	if _, err := m.ExtractAudio(context.Background(), "/tmp/v.mp4", "", AudioExtractOptions{}); err == nil {
		t.Fatal("empty outPath must error")
	}
}

func TestWriteTempFileRoundTrip(t *testing.T) {
	m := testExtractor(t)

	path, cleanup, err := m.WriteTempFile(context.Background(), []byte("payload"), "bin")
	if err != nil {
		t.Fatalf("WriteTempFile: %v", err)
	}
	defer cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("content = %q", data)
	}

	// Same bytes map to the same content-addressed path.
	path2, cleanup2, err := m.WriteTempFile(context.Background(), []byte("payload"), "bin")
	if err != nil {
		t.Fatalf("WriteTempFile repeat: %v", err)
	}
	defer cleanup2()
	if path2 != path {
		t.Fatalf("paths differ: %s vs %s", path, path2)
	}
}
