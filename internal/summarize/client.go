package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/httpx"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/retry"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
	"github.com/courseatlas/courseatlas-backend/internal/utils"
)

const (
	// Transcripts below this length are returned unchanged; summarizing them
	// is low-value.
	minTranscriptChars = 50
	// Transcripts above this budget are truncated before sending.
	maxTranscriptChars = 48000
	truncationMarker   = "\n\n[transcript truncated]"

	// extractiveSentenceCap bounds the fallback summary.
	extractiveSentenceCap = 5
)

const promptTemplate = `Summarize the following video transcript as structured markdown with these sections:

# Title
A short descriptive title.

## Overview
Two or three sentences describing what the video covers.

## Key Points
Bulleted list of the main points.

## Notes
Any definitions, caveats, or details worth remembering.

## Action Items
Concrete follow-ups for the viewer, or "None" if there are none.

Transcript:
%s`

// Client produces markdown summaries of transcripts via an OpenAI-compatible
// chat completions endpoint.
//
// This is the one component that swallows failures: Summarize always returns
// usable text. On rate limiting or transient transport errors it retries with
// exponential backoff; when retries are exhausted or the failure is not
// retryable it degrades to an extractive summary annotated with the reason.
type Client struct {
	log *logger.Logger

	baseURL string
	apiKey  string
	model   string

	httpClient *http.Client
	policy     retry.Policy
}

func NewClient(log *logger.Logger) *Client {
	baseURL := strings.TrimSpace(os.Getenv("SUMMARIZER_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(os.Getenv("SUMMARIZER_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeoutSecs := utils.GetEnvAsInt("SUMMARIZER_TIMEOUT_SECONDS", 120, log)
	if timeoutSecs <= 0 {
		timeoutSecs = 120
	}
	return &Client{
		log:        log.With("service", "Summarizer"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second},
		policy:     retry.DefaultPolicy(),
	}
}

// Summarize returns a markdown summary for the transcript. It never returns
// an error; the worst case is an annotated extractive summary.
func (c *Client) Summarize(ctx context.Context, transcript string) string {
	ctx = ctxutil.Default(ctx)

	transcript = strings.TrimSpace(transcript)
	if len(transcript) < minTranscriptChars {
		return transcript
	}

	prompt := transcript
	if len(prompt) > maxTranscriptChars {
		cut := maxTranscriptChars
		for cut > 0 && !utf8.RuneStart(prompt[cut]) {
			cut--
		}
		prompt = prompt[:cut] + truncationMarker
	}

	var out string
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		text, err := c.complete(ctx, fmt.Sprintf(promptTemplate, prompt))
		if err != nil {
			return err
		}
		out = text
		return nil
	}, retryableSummarization)
	if err != nil {
		c.log.Warn("Summarization failed, using extractive fallback", "error", err)
		return extractiveSummary(transcript, err)
	}
	return out
}

func retryableSummarization(err error) bool {
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	if httpx.IsRetryableError(err) {
		return true
	}
	// No HTTP status means the request never completed; treat as transient.
	var serr *apperr.SummarizationError
	return stderrors.As(err, &serr) && serr.StatusCode == 0
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You summarize educational video transcripts."},
			{Role: "user", Content: prompt},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", &apperr.SummarizationError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", &apperr.SummarizationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &apperr.SummarizationError{Err: err}
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", &apperr.SummarizationError{Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &apperr.SummarizationError{
			StatusCode: resp.StatusCode,
			RetryAfter: httpx.RetryAfterDuration(resp, 0, 0),
			Err:        fmt.Errorf("endpoint returned %s: %s", resp.Status, truncateForLog(raw)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &apperr.SummarizationError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", &apperr.SummarizationError{Err: fmt.Errorf("empty completion")}
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// extractiveSummary takes the first sentences of the transcript, capped, and
// annotates why the model summary is missing.
func extractiveSummary(transcript string, cause error) string {
	sentences := splitSentences(transcript)
	if len(sentences) > extractiveSentenceCap {
		sentences = sentences[:extractiveSentenceCap]
	}

	var b strings.Builder
	b.WriteString("## Summary (extractive)\n\n")
	b.WriteString(strings.Join(sentences, " "))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "*Automatic summarization unavailable: %v*", cause)
	return b.String()
}

func splitSentences(text string) []string {
	out := []string{}
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func truncateForLog(raw []byte) string {
	const maxLen = 300
	s := string(raw)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
