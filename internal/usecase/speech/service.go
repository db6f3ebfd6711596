// Package speech runs the narration pipeline: synthesize a language's
// script into audio with word timings, and translate scripts between
// languages while carrying marker tokens across.
package speech

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/slidevoxdev/slidevox/errors"
	"github.com/slidevoxdev/slidevox/internal/domain/entities"
	"github.com/slidevoxdev/slidevox/internal/domain/repositories"
	"github.com/slidevoxdev/slidevox/internal/infrastructure/storage"
	"github.com/slidevoxdev/slidevox/internal/usecase/markers"
	"github.com/slidevoxdev/slidevox/pkg/markertoken"
	"github.com/slidevoxdev/slidevox/pkg/speechkit"
	"github.com/slidevoxdev/slidevox/pkg/textnorm"
	"github.com/slidevoxdev/slidevox/pkg/wordtiming"
)

// Synthesizer is the slice of the TTS client the pipeline needs.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang, voice string) (*speechkit.SynthesisResult, error)
}

// Translator is the slice of the translation client the pipeline needs.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// AudioUploader stores synthesized audio and returns a public URL.
type AudioUploader interface {
	UploadAudio(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// SynthesisOutcome reports what one synthesis run produced.
type SynthesisOutcome struct {
	AudioURL         string  `json:"audio_url"`
	DurationSeconds  float64 `json:"duration_seconds"`
	WordCount        int     `json:"word_count"`
	TimingsEstimated bool    `json:"timings_estimated"`
	MarkersUpdated   int     `json:"markers_updated"`
}

// TranslationOutcome reports what one translation run produced.
type TranslationOutcome struct {
	TranslatedText      string `json:"translated_text"`
	TokensCarried       int    `json:"tokens_carried"`
	PositionsReanchored int    `json:"positions_reanchored"`
}

// Service defines the narration pipeline operations
type Service interface {
	Synthesize(ctx context.Context, slideID uuid.UUID, lang, voice string) (*SynthesisOutcome, error)
	Translate(ctx context.Context, slideID uuid.UUID, sourceLang, targetLang string) (*TranslationOutcome, error)
}

type speechService struct {
	scriptRepo repositories.ScriptRepository
	markerSvc  markers.Service
	tts        Synthesizer
	translator Translator
	audioStore AudioUploader
	logger     *zap.Logger
}

// NewService constructs the narration pipeline service
func NewService(
	scriptRepo repositories.ScriptRepository,
	markerSvc markers.Service,
	tts Synthesizer,
	translator Translator,
	audioStore AudioUploader,
	logger *zap.Logger,
) Service {
	return &speechService{
		scriptRepo: scriptRepo,
		markerSvc:  markerSvc,
		tts:        tts,
		translator: translator,
		audioStore: audioStore,
		logger:     logger,
	}
}

// Synthesize turns the (slide, lang) script into audio, uploads it, derives
// word timings from the provider's character alignment (or estimates them
// when alignment is unavailable), and refreshes marker times.
func (s *speechService) Synthesize(ctx context.Context, slideID uuid.UUID, lang, voice string) (*SynthesisOutcome, error) {
	script, err := s.scriptRepo.FindScript(ctx, slideID, lang)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load script", err)
	}
	if script == nil {
		return nil, apperrors.ErrScriptNotFound(slideID.String(), lang)
	}

	normalized := textnorm.Normalize(script.Text)
	if markertoken.Strip(normalized) == "" {
		return nil, apperrors.ErrScriptEmpty(lang)
	}

	result, err := s.tts.Synthesize(ctx, normalized, lang, voice)
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(err)
	}
	audio, err := result.Audio()
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(err)
	}

	contentType := result.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	audioURL, err := s.audioStore.UploadAudio(ctx, storage.AudioObjectName(slideID, lang), audio, contentType)
	if err != nil {
		return nil, apperrors.ErrStorageFailed("upload audio", err)
	}

	var timings []wordtiming.WordTiming
	estimated := false
	if result.Alignment != nil && result.Alignment.Valid() {
		timings = wordtiming.Align(normalized, *result.Alignment)
	}
	if len(timings) == 0 {
		timings = wordtiming.Estimate(normalized, result.DurationSeconds)
		estimated = len(timings) > 0
	}

	norm, err := s.scriptRepo.FindNormalized(ctx, slideID, lang)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load normalized script", err)
	}
	if norm == nil {
		norm = entities.NewNormalizedScript(slideID, lang)
	}
	norm.RawText = script.Text
	norm.NormalizedText = normalized
	norm.TokenizationVersion = textnorm.TokenizationVersion
	norm.WordTimings = timings
	norm.ContainsMarkerTokens = markertoken.Contains(normalized)
	if err := s.scriptRepo.UpsertNormalized(ctx, norm); err != nil {
		return nil, apperrors.ErrDBQueryFailed("store normalized script", err)
	}

	script.AudioURL = audioURL
	if err := s.scriptRepo.UpsertScript(ctx, script); err != nil {
		return nil, apperrors.ErrDBQueryFailed("store script", err)
	}

	markersUpdated, err := s.markerSvc.RecomputeTimes(ctx, slideID, lang)
	if err != nil {
		return nil, err
	}

	s.logger.Info("speech.synthesized",
		zap.String("slide_id", slideID.String()),
		zap.String("lang", lang),
		zap.Float64("duration", result.DurationSeconds),
		zap.Int("words", len(timings)),
		zap.Bool("estimated", estimated),
		zap.Int("markers_updated", markersUpdated),
	)

	return &SynthesisOutcome{
		AudioURL:         audioURL,
		DurationSeconds:  result.DurationSeconds,
		WordCount:        len(timings),
		TimingsEstimated: estimated,
		MarkersUpdated:   markersUpdated,
	}, nil
}

// Translate carries the source script into the target language. Marker
// tokens are inserted into the source first so the translation provider
// preserves them, then the surviving tokens re-anchor the target positions.
// The target's previous audio and timings are discarded as stale.
func (s *speechService) Translate(ctx context.Context, slideID uuid.UUID, sourceLang, targetLang string) (*TranslationOutcome, error) {
	if _, _, err := s.markerSvc.InsertTokens(ctx, slideID, sourceLang); err != nil {
		return nil, err
	}

	source, err := s.scriptRepo.FindScript(ctx, slideID, sourceLang)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load source script", err)
	}
	if source == nil {
		return nil, apperrors.ErrScriptNotFound(slideID.String(), sourceLang)
	}

	translated, err := s.translator.Translate(ctx, source.Text, sourceLang, targetLang)
	if err != nil {
		return nil, apperrors.ErrTranslationFailed(err)
	}

	target, err := s.scriptRepo.FindScript(ctx, slideID, targetLang)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load target script", err)
	}
	if target == nil {
		target = entities.NewSlideScript(slideID, targetLang, translated)
	}
	target.Text = translated
	target.NeedsRetranslate = false
	target.AudioURL = ""
	if err := s.scriptRepo.UpsertScript(ctx, target); err != nil {
		return nil, apperrors.ErrDBQueryFailed("store target script", err)
	}

	normalizedTarget := textnorm.Normalize(translated)
	norm, err := s.scriptRepo.FindNormalized(ctx, slideID, targetLang)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load target normalized script", err)
	}
	if norm == nil {
		norm = entities.NewNormalizedScript(slideID, targetLang)
	}
	norm.RawText = translated
	norm.NormalizedText = normalizedTarget
	norm.TokenizationVersion = textnorm.TokenizationVersion
	norm.WordTimings = nil
	norm.ContainsMarkerTokens = markertoken.Contains(normalizedTarget)
	if err := s.scriptRepo.UpsertNormalized(ctx, norm); err != nil {
		return nil, apperrors.ErrDBQueryFailed("store target normalized script", err)
	}

	reanchored, err := s.markerSvc.ReanchorFromTokens(ctx, slideID, targetLang)
	if err != nil {
		return nil, err
	}

	tokensCarried := len(markertoken.Parse(normalizedTarget))

	s.logger.Info("speech.translated",
		zap.String("slide_id", slideID.String()),
		zap.String("source_lang", sourceLang),
		zap.String("target_lang", targetLang),
		zap.Int("tokens_carried", tokensCarried),
		zap.Int("reanchored", reanchored),
	)

	return &TranslationOutcome{
		TranslatedText:      translated,
		TokensCarried:       tokensCarried,
		PositionsReanchored: reanchored,
	}, nil
}
