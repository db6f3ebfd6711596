package speechkit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/slidevoxdev/slidevox/pkg/config"
)

func TestSynthesize_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		var payload SynthesisRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.Text != "Hello world" {
			t.Fatalf("unexpected text %q", payload.Text)
		}
		if !payload.WithAlignment {
			t.Fatal("expected alignment to be requested")
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"audio_base64":     base64.StdEncoding.EncodeToString([]byte("fake-audio")),
			"duration_seconds": 1.5,
			"alignment": map[string]interface{}{
				"characters":                    []string{"H", "i"},
				"character_start_times_seconds": []float64{0.0, 0.1},
				"character_end_times_seconds":   []float64{0.1, 0.2},
			},
		})
	}))
	defer ts.Close()

	client := NewTTSClient(&config.SpeechConfig{APIKey: "test-key", BaseURL: ts.URL})

	result, err := client.Synthesize(context.Background(), "Hello world", "en", "")
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if result.DurationSeconds != 1.5 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds)
	}
	if result.Alignment == nil || len(result.Alignment.Characters) != 2 {
		t.Fatalf("unexpected alignment %+v", result.Alignment)
	}
	audio, err := result.Audio()
	if err != nil {
		t.Fatalf("audio decode failed: %v", err)
	}
	if string(audio) != "fake-audio" {
		t.Fatalf("unexpected audio %q", audio)
	}
}

func TestSynthesize_RetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"audio_base64": "", "duration_seconds": 2.0})
	}))
	defer ts.Close()

	client := NewTTSClient(&config.SpeechConfig{APIKey: "test-key", BaseURL: ts.URL})

	result, err := client.Synthesize(context.Background(), "retry me", "en", "")
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if result.DurationSeconds != 2.0 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestSynthesize_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	client := NewTTSClient(&config.SpeechConfig{APIKey: "test-key", BaseURL: ts.URL})

	if _, err := client.Synthesize(context.Background(), "", "en", ""); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 call, got %d", got)
	}
}

func TestTranslate_SendsPreservationInstruction(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload TranslateRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.Instruction == "" {
			t.Fatal("expected marker preservation instruction")
		}
		if payload.SourceLang != "en" || payload.TargetLang != "ru" {
			t.Fatalf("unexpected langs %s -> %s", payload.SourceLang, payload.TargetLang)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"translated_text": "Привет мир"})
	}))
	defer ts.Close()

	client := NewTranslateClient(&config.TranslateConfig{APIKey: "test-key", BaseURL: ts.URL})

	got, err := client.Translate(context.Background(), "Hello world", "en", "ru")
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if got != "Привет мир" {
		t.Fatalf("unexpected translation %q", got)
	}
}
