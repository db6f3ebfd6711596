package speechkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/slidevoxdev/slidevox/pkg/config"
	"github.com/slidevoxdev/slidevox/pkg/markertoken"
)

// TranslateClient is a minimal client for the translation provider
type TranslateClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewTranslateClient creates a translation client using the provided config.
// Pass a nil config to fall back to environment variables.
func NewTranslateClient(cfg *config.TranslateConfig) *TranslateClient {
	var apiKey, baseURL, model string
	timeout := 120 * time.Second
	if cfg != nil {
		apiKey = cfg.APIKey
		baseURL = cfg.BaseURL
		model = cfg.Model
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("TRANSLATE_API_KEY")
	}
	if baseURL == "" {
		baseURL = os.Getenv("TRANSLATE_API_URL")
	}

	return &TranslateClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// TranslateRequest is the payload for /v1/translate. Instruction carries the
// marker-token preservation rule the provider must follow.
type TranslateRequest struct {
	Model       string `json:"model,omitempty"`
	Text        string `json:"text"`
	SourceLang  string `json:"source_lang"`
	TargetLang  string `json:"target_lang"`
	Instruction string `json:"instruction,omitempty"`
}

// TranslateResponse is a minimal response shape
type TranslateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Translate translates script text between languages. The provider is
// instructed to keep marker tokens verbatim and adjacent to the translated
// equivalent of the word they precede.
func (c *TranslateClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	payload := TranslateRequest{
		Model:       c.model,
		Text:        text,
		SourceLang:  sourceLang,
		TargetLang:  targetLang,
		Instruction: markertoken.TranslationInstruction,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/translate", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("translation provider returned status %d", resp.StatusCode)
	}

	var tr TranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	return tr.TranslatedText, nil
}
