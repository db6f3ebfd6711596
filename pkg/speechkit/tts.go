// Package speechkit holds minimal HTTP clients for the external speech
// synthesis and translation providers. Both are black boxes to the timing
// core: the TTS provider returns audio plus optional character-level
// alignment, the translator returns text with marker tokens preserved.
package speechkit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/slidevoxdev/slidevox/pkg/config"
	"github.com/slidevoxdev/slidevox/pkg/wordtiming"
)

// TTSClient is a minimal speech synthesis client
type TTSClient struct {
	apiKey       string
	baseURL      string
	defaultVoice string
	client       *http.Client
}

// NewTTSClient creates a TTS client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewTTSClient(cfg *config.SpeechConfig) *TTSClient {
	var apiKey, baseURL, voice string
	timeout := 60 * time.Second
	if cfg != nil {
		apiKey = cfg.APIKey
		baseURL = cfg.BaseURL
		voice = cfg.DefaultVoice
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("SPEECH_API_KEY")
	}
	if baseURL == "" {
		baseURL = os.Getenv("SPEECH_API_URL")
	}

	return &TTSClient{
		apiKey:       apiKey,
		baseURL:      baseURL,
		defaultVoice: voice,
		client:       &http.Client{Timeout: timeout},
	}
}

// SynthesisRequest is the payload for /v1/synthesize
type SynthesisRequest struct {
	Text          string `json:"text"`
	Lang          string `json:"lang,omitempty"`
	Voice         string `json:"voice,omitempty"`
	WithAlignment bool   `json:"with_alignment,omitempty"`
}

// SynthesisResult is the provider's response: audio plus duration and an
// optional character alignment (absent or malformed alignment is treated as
// "alignment unavailable" downstream, never an error).
type SynthesisResult struct {
	AudioBase64     string                    `json:"audio_base64"`
	ContentType     string                    `json:"content_type,omitempty"`
	DurationSeconds float64                   `json:"duration_seconds"`
	Alignment       *wordtiming.CharAlignment `json:"alignment,omitempty"`
}

// Audio decodes the synthesized audio bytes
func (r *SynthesisResult) Audio() ([]byte, error) {
	return base64.StdEncoding.DecodeString(r.AudioBase64)
}

// Synthesize requests speech for a text in a language, retrying transient
// failures with exponential backoff. Client errors are not retried.
func (c *TTSClient) Synthesize(ctx context.Context, text, lang, voice string) (*SynthesisResult, error) {
	if voice == "" {
		voice = c.defaultVoice
	}
	payload := SynthesisRequest{
		Text:          text,
		Lang:          lang,
		Voice:         voice,
		WithAlignment: true,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var result SynthesisResult
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/synthesize", bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("speech provider returned status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("speech provider rejected request with status %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode synthesis response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return &result, nil
}
