// Package transcribe sends recorded audio segments to an OpenAI-compatible
// speech translation endpoint and returns English text.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/suykerbuyk/carenotes/internal/config"
	"github.com/suykerbuyk/carenotes/internal/note"
)

const op = "transcribe audio"

var errEmptyText = errors.New("empty text in response")

// Audio is a finished recording. The caller owns the underlying resource.
type Audio struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Client calls the audio translations endpoint with bounded retry.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxAttempts int
	delay       time.Duration
	httpClient  *http.Client
}

// New builds a Client from configuration. apiKey is passed separately so
// callers decide how the credential is resolved.
func New(ocfg config.OpenAIConfig, tcfg config.TranscriptionConfig, apiKey string) *Client {
	attempts := tcfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(ocfg.BaseURL, "/"),
		apiKey:      apiKey,
		model:       ocfg.TranscriptionModel,
		maxAttempts: attempts,
		delay:       tcfg.RetryDelay(),
		httpClient:  &http.Client{Timeout: ocfg.Timeout()},
	}
}

// Transcribe translates the audio to English text. Any failed attempt is
// retried after a fixed delay until maxAttempts calls have been made. An
// attempt that returns no text counts as a failure.
//
// Errors are classified as note.ErrTranscriptionFailed (carrying the last
// cause) or note.ErrEmptyTranscription when the final attempt produced no text.
func (c *Client) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", note.Validation(op, errors.New("audio segment is empty"))
	}
	if audio.Filename == "" {
		audio.Filename = "audio-" + time.Now().UTC().Format("2006-01-02T15-04-05") + ".webm"
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.delay), uint64(c.maxAttempts-1)),
		ctx,
	)

	attempt := 0
	var text string
	err := backoff.RetryNotify(func() error {
		attempt++
		t, err := c.translate(ctx, audio)
		if err != nil {
			return err
		}
		t = strings.TrimSpace(t)
		if t == "" {
			return errEmptyText
		}
		text = t
		return nil
	}, policy, func(err error, next time.Duration) {
		log.Printf("warning: transcription attempt %d/%d failed, retrying in %s: %v", attempt, c.maxAttempts, next, err)
	})

	if err == nil {
		return text, nil
	}
	if errors.Is(err, errEmptyText) {
		return "", note.Classify(note.ErrEmptyTranscription, op, err)
	}
	return "", note.Classify(note.ErrTranscriptionFailed, op, fmt.Errorf("after %d attempts: %w", attempt, err))
}

// TranscribeFile reads path and transcribes it. The file is left in place.
func (c *Client) TranscribeFile(ctx context.Context, path string) (string, error) {
	audio, err := ReadAudio(path)
	if err != nil {
		return "", err
	}
	return c.Transcribe(ctx, audio)
}

// ReadAudio loads a recording from disk, deriving the upload filename and
// content type from path.
func ReadAudio(path string) (Audio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Audio{}, note.Validation(op, fmt.Errorf("read audio: %w", err))
	}
	return Audio{
		Filename:    filepath.Base(path),
		ContentType: ContentTypeFor(path),
		Data:        data,
	}, nil
}

func (c *Client) translate(ctx context.Context, audio Audio) (string, error) {
	body, contentType, err := buildForm(c.model, audio)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/translations", body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiMessage(respBody))
	}

	return parseText(resp.Header.Get("Content-Type"), respBody)
}

func buildForm(model string, audio Audio) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("model", model); err != nil {
		return nil, "", fmt.Errorf("write form: %w", err)
	}

	ct := audio.ContentType
	if ct == "" {
		ct = ContentTypeFor(audio.Filename)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, audio.Filename))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("write form: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, "", fmt.Errorf("write form: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// parseText accepts either a JSON object with a text field or a plain text
// body.
func parseText(contentType string, body []byte) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	trimmed := bytes.TrimSpace(body)
	if mediaType == "application/json" || (len(trimmed) > 0 && trimmed[0] == '{') {
		var tr translationResponse
		if err := json.Unmarshal(trimmed, &tr); err != nil {
			return "", fmt.Errorf("unmarshal response: %w", err)
		}
		return tr.Text, nil
	}
	return string(trimmed), nil
}

func apiMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return string(body)
}

type translationResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ContentTypeFor guesses an audio MIME type from a file name.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".webm":
		return "audio/webm"
	case ".mp4", ".m4a":
		return "audio/mp4"
	case ".wav":
		return "audio/wav"
	case ".mp3", ".mpeg":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
