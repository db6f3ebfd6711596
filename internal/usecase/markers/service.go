// Package markers implements the global marker store: language-independent
// marker identities with per-language positions, propagation between
// languages, timing recomputation from word timings, and token insertion
// into script text.
package markers

import (
	"context"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/slidevoxdev/slidevox/errors"
	"github.com/slidevoxdev/slidevox/internal/domain/entities"
	"github.com/slidevoxdev/slidevox/internal/domain/repositories"
	"github.com/slidevoxdev/slidevox/internal/infrastructure/cache"
	"github.com/slidevoxdev/slidevox/pkg/markertoken"
	"github.com/slidevoxdev/slidevox/pkg/textnorm"
	"github.com/slidevoxdev/slidevox/pkg/wordtiming"
)

// CreateFromWordInput carries the word-click authoring request: a character
// range in one language's normalized script text.
type CreateFromWordInput struct {
	SlideID   uuid.UUID
	Lang      string
	CharStart int
	CharEnd   int
	WordText  string
	Name      string
}

// MarkerWithPositions is the read model for listing: a marker plus its
// positions keyed by language.
type MarkerWithPositions struct {
	Marker    entities.GlobalMarker              `json:"marker"`
	Positions map[string]entities.MarkerPosition `json:"positions"`
}

// MigrationResult summarizes a legacy word-trigger migration run.
type MigrationResult struct {
	MarkersCreated   int      `json:"markers_created"`
	TriggersMigrated int      `json:"triggers_migrated"`
	TokensInserted   int      `json:"tokens_inserted"`
	NeedsRetranslate []string `json:"needs_retranslate"`
}

// Service defines global marker store operations
type Service interface {
	CreateFromWord(ctx context.Context, in CreateFromWordInput) (*entities.GlobalMarker, string, error)
	ListForSlide(ctx context.Context, slideID uuid.UUID) ([]MarkerWithPositions, error)
	Propagate(ctx context.Context, slideID uuid.UUID, sourceLang, targetLang string) (int, error)
	RecomputeTimes(ctx context.Context, slideID uuid.UUID, lang string) (int, error)
	InsertTokens(ctx context.Context, slideID uuid.UUID, lang string) (int, string, error)
	ReanchorFromTokens(ctx context.Context, slideID uuid.UUID, lang string) (int, error)
	MigrateWordTriggers(ctx context.Context, slideID uuid.UUID, baseLang string) (*MigrationResult, error)
}

type markerService struct {
	markerRepo repositories.MarkerRepository
	scriptRepo repositories.ScriptRepository
	slideRepo  repositories.SlideRepository
	cache      cache.Store
	logger     *zap.Logger
}

// NewService constructs the marker store service
func NewService(
	markerRepo repositories.MarkerRepository,
	scriptRepo repositories.ScriptRepository,
	slideRepo repositories.SlideRepository,
	cacheStore cache.Store,
	logger *zap.Logger,
) Service {
	return &markerService{
		markerRepo: markerRepo,
		scriptRepo: scriptRepo,
		slideRepo:  slideRepo,
		cache:      cacheStore,
		logger:     logger,
	}
}

// normalizedTextFor returns the current normalized text for (slide, lang):
// the stored normalized row when present, else the script text normalized on
// the fly. Empty string when no script exists at all.
func (s *markerService) normalizedTextFor(ctx context.Context, slideID uuid.UUID, lang string) (string, *entities.NormalizedScript, error) {
	norm, err := s.scriptRepo.FindNormalized(ctx, slideID, lang)
	if err != nil {
		return "", nil, err
	}
	if norm != nil && norm.NormalizedText != "" {
		return norm.NormalizedText, norm, nil
	}

	script, err := s.scriptRepo.FindScript(ctx, slideID, lang)
	if err != nil {
		return "", norm, err
	}
	if script == nil {
		return "", norm, nil
	}
	return textnorm.Normalize(script.Text), norm, nil
}

// CreateFromWord mints a new global marker anchored to a word in one
// language and returns the marker plus its formatted token for insertion.
func (s *markerService) CreateFromWord(ctx context.Context, in CreateFromWordInput) (*entities.GlobalMarker, string, error) {
	text, norm, err := s.normalizedTextFor(ctx, in.SlideID, in.Lang)
	if err != nil {
		return nil, "", apperrors.ErrInternal(err)
	}
	if text == "" {
		return nil, "", apperrors.ErrScriptNotFound(in.SlideID.String(), in.Lang)
	}

	textLen := len([]rune(text))
	if in.CharStart < 0 || in.CharEnd < in.CharStart || in.CharEnd > textLen {
		return nil, "", apperrors.ErrCharRangeOutOfBounds(in.CharStart, in.CharEnd, textLen)
	}

	marker := entities.NewGlobalMarker(in.SlideID, in.Name)
	if err := s.markerRepo.CreateMarker(ctx, marker); err != nil {
		return nil, "", apperrors.ErrDBQueryFailed("create marker", err)
	}

	position := entities.NewMarkerPosition(marker.ID, in.Lang, entities.PositionSourceWordClick)
	charStart, charEnd := in.CharStart, in.CharEnd
	position.CharStart = &charStart
	position.CharEnd = &charEnd
	position.WordText = in.WordText

	// Best effort: the word may already have timing if TTS has run.
	if norm.HasTimings() {
		for _, wt := range norm.WordTimings {
			if wt.CharStart == in.CharStart {
				start := wt.StartTime
				position.TimeSeconds = &start
				break
			}
		}
	}

	if err := s.markerRepo.UpsertPosition(ctx, position); err != nil {
		return nil, "", apperrors.ErrDBQueryFailed("create marker position", err)
	}
	s.invalidateLookup(ctx, in.SlideID, in.Lang)

	s.logger.Info("marker.created",
		zap.String("marker_id", marker.ID.String()),
		zap.String("slide_id", in.SlideID.String()),
		zap.String("lang", in.Lang),
		zap.String("word", in.WordText),
	)

	return marker, marker.Token(), nil
}

// ListForSlide returns every marker on a slide with positions fanned out by
// language.
func (s *markerService) ListForSlide(ctx context.Context, slideID uuid.UUID) ([]MarkerWithPositions, error) {
	found, err := s.markerRepo.ListMarkersBySlide(ctx, slideID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list markers", err)
	}

	out := make([]MarkerWithPositions, 0, len(found))
	for _, m := range found {
		byLang := make(map[string]entities.MarkerPosition, len(m.Positions))
		for _, p := range m.Positions {
			byLang[p.Lang] = p
		}
		m.Positions = nil
		out = append(out, MarkerWithPositions{Marker: m, Positions: byLang})
	}
	return out, nil
}

// Propagate copies every source-language position into the target language,
// preserving marker identity and estimating the target character range by
// proportional word index. Times are reset; they only become real once
// target-language TTS has run.
//
// The proportional mapping is a placeholder by product decision: authors
// correct misplaced markers and token anchoring takes over after that.
func (s *markerService) Propagate(ctx context.Context, slideID uuid.UUID, sourceLang, targetLang string) (int, error) {
	sourcePositions, err := s.markerRepo.ListPositionsByLang(ctx, slideID, sourceLang)
	if err != nil {
		return 0, apperrors.ErrDBQueryFailed("list source positions", err)
	}
	if len(sourcePositions) == 0 {
		return 0, apperrors.ErrNoSourcePositions(sourceLang)
	}

	targetText, _, err := s.normalizedTextFor(ctx, slideID, targetLang)
	if err != nil {
		return 0, apperrors.ErrInternal(err)
	}
	if targetText == "" {
		return 0, apperrors.ErrScriptNotFound(slideID.String(), targetLang)
	}
	targetWords := textnorm.TokenizeWords(targetText)

	sourceText, _, err := s.normalizedTextFor(ctx, slideID, sourceLang)
	if err != nil {
		return 0, apperrors.ErrInternal(err)
	}
	sourceWords := textnorm.TokenizeWords(sourceText)

	count := 0
	for _, src := range sourcePositions {
		position := entities.NewMarkerPosition(src.MarkerID, targetLang, entities.PositionSourceAutomatic)

		idx := sourceWordIndex(sourceWords, src.CharStart)
		if idx >= 0 && len(targetWords) > 0 {
			targetIdx := int(math.Floor(float64(idx) / float64(len(sourceWords)) * float64(len(targetWords))))
			if targetIdx >= len(targetWords) {
				targetIdx = len(targetWords) - 1
			}
			w := targetWords[targetIdx]
			position.CharStart = &w.Start
			position.CharEnd = &w.End
			position.WordText = w.Text
		} else {
			// Estimation impossible; carry the source placement verbatim and
			// accept it is likely wrong until corrected.
			position.CharStart = src.CharStart
			position.CharEnd = src.CharEnd
			position.WordText = src.WordText
		}

		if err := s.markerRepo.UpsertPosition(ctx, position); err != nil {
			return count, apperrors.ErrDBQueryFailed("upsert propagated position", err)
		}
		count++
	}
	s.invalidateLookup(ctx, slideID, targetLang)

	s.logger.Info("marker.propagated",
		zap.String("slide_id", slideID.String()),
		zap.String("source_lang", sourceLang),
		zap.String("target_lang", targetLang),
		zap.Int("count", count),
	)

	return count, nil
}

// sourceWordIndex locates the tokenized word a stored character offset falls
// on. Returns -1 when the offset is unknown or matches no word.
func sourceWordIndex(words []markertoken.WordSpan, charStart *int) int {
	if charStart == nil || len(words) == 0 {
		return -1
	}
	for i, w := range words {
		if w.Start == *charStart {
			return i
		}
	}
	for i, w := range words {
		if *charStart >= w.Start && *charStart < w.End {
			return i
		}
	}
	return -1
}

// RecomputeTimes refreshes time_seconds for every marker on the slide from
// the language's current word timings: token anchoring first, stored
// char-offset exact match as fallback. Returns the number of positions
// updated or created; zero (not an error) when no word timings exist yet.
func (s *markerService) RecomputeTimes(ctx context.Context, slideID uuid.UUID, lang string) (int, error) {
	norm, err := s.scriptRepo.FindNormalized(ctx, slideID, lang)
	if err != nil {
		return 0, apperrors.ErrDBQueryFailed("load normalized script", err)
	}
	if !norm.HasTimings() {
		// TTS has not produced timings for this language yet.
		return 0, nil
	}

	found, err := s.markerRepo.ListMarkersBySlide(ctx, slideID)
	if err != nil {
		return 0, apperrors.ErrDBQueryFailed("list markers", err)
	}

	updated := 0
	for _, marker := range found {
		anchored, anchorOK := wordtiming.AnchorTime(norm.NormalizedText, marker.ID.String(), norm.WordTimings)

		position, err := s.markerRepo.FindPosition(ctx, marker.ID, lang)
		if err != nil {
			return updated, apperrors.ErrDBQueryFailed("load position", err)
		}

		if position == nil {
			// Only materialize a position when a time was actually resolved.
			if !anchorOK {
				continue
			}
			position = entities.NewMarkerPosition(marker.ID, lang, entities.PositionSourceAutomatic)
			position.TimeSeconds = &anchored
			if err := s.markerRepo.UpsertPosition(ctx, position); err != nil {
				return updated, apperrors.ErrDBQueryFailed("create position", err)
			}
			updated++
			continue
		}

		resolved, ok := anchored, anchorOK
		if !ok && position.CharStart != nil {
			for _, wt := range norm.WordTimings {
				if wt.CharStart == *position.CharStart {
					resolved, ok = wt.StartTime, true
					break
				}
			}
		}
		if !ok {
			continue
		}

		position.TimeSeconds = &resolved
		if err := s.markerRepo.UpsertPosition(ctx, position); err != nil {
			return updated, apperrors.ErrDBQueryFailed("update position", err)
		}
		updated++
	}
	s.invalidateLookup(ctx, slideID, lang)

	s.logger.Info("marker.times_recomputed",
		zap.String("slide_id", slideID.String()),
		zap.String("lang", lang),
		zap.Int("updated", updated),
	)

	return updated, nil
}

// InsertTokens embeds the token of every positioned marker into the
// language's script text. Idempotent: tokens already present are skipped, so
// a second run inserts nothing.
func (s *markerService) InsertTokens(ctx context.Context, slideID uuid.UUID, lang string) (int, string, error) {
	script, err := s.scriptRepo.FindScript(ctx, slideID, lang)
	if err != nil {
		return 0, "", apperrors.ErrDBQueryFailed("load script", err)
	}
	if script == nil {
		return 0, "", apperrors.ErrScriptNotFound(slideID.String(), lang)
	}

	positions, err := s.markerRepo.ListPositionsByLang(ctx, slideID, lang)
	if err != nil {
		return 0, "", apperrors.ErrDBQueryFailed("list positions", err)
	}

	// Offsets are relative to normalized text, so insertion happens there.
	text := textnorm.Normalize(script.Text)
	var insertions []markertoken.Insertion
	for _, p := range positions {
		if p.CharStart == nil {
			continue
		}
		if _, _, ok := markertoken.Locate(text, p.MarkerID.String()); ok {
			continue
		}
		insertions = append(insertions, markertoken.Insertion{
			MarkerID: p.MarkerID.String(),
			Position: *p.CharStart,
		})
	}
	if len(insertions) == 0 {
		return 0, script.Text, nil
	}

	updated := markertoken.InsertMany(text, insertions)

	script.Text = updated
	if err := s.scriptRepo.UpsertScript(ctx, script); err != nil {
		return 0, "", apperrors.ErrDBQueryFailed("update script", err)
	}

	norm, err := s.scriptRepo.FindNormalized(ctx, slideID, lang)
	if err != nil {
		return 0, "", apperrors.ErrDBQueryFailed("load normalized script", err)
	}
	if norm == nil {
		norm = entities.NewNormalizedScript(slideID, lang)
	}
	norm.RawText = updated
	norm.NormalizedText = textnorm.Normalize(updated)
	norm.TokenizationVersion = textnorm.TokenizationVersion
	norm.ContainsMarkerTokens = true
	// The text changed, so any previous timings are stale.
	norm.WordTimings = nil
	if err := s.scriptRepo.UpsertNormalized(ctx, norm); err != nil {
		return 0, "", apperrors.ErrDBQueryFailed("update normalized script", err)
	}
	s.invalidateLookup(ctx, slideID, lang)

	s.logger.Info("marker.tokens_inserted",
		zap.String("slide_id", slideID.String()),
		zap.String("lang", lang),
		zap.Int("count", len(insertions)),
	)

	return len(insertions), updated, nil
}

// ReanchorFromTokens rebuilds the language's positions from the marker
// tokens embedded in its script text, typically right after translation.
// Each surviving token pins its marker to the adjacent word; times are left
// unset until TTS produces timings. Tokens of markers belonging to other
// slides are ignored.
func (s *markerService) ReanchorFromTokens(ctx context.Context, slideID uuid.UUID, lang string) (int, error) {
	text, _, err := s.normalizedTextFor(ctx, slideID, lang)
	if err != nil {
		return 0, apperrors.ErrInternal(err)
	}
	if text == "" {
		return 0, nil
	}

	tokens := markertoken.Parse(text)
	if len(tokens) == 0 {
		return 0, nil
	}
	words := textnorm.TokenizeWords(text)

	anchored := 0
	for _, token := range tokens {
		markerID, err := uuid.Parse(token.MarkerID)
		if err != nil {
			continue
		}
		marker, err := s.markerRepo.FindMarkerByID(ctx, markerID)
		if err != nil {
			return anchored, apperrors.ErrDBQueryFailed("load marker", err)
		}
		if marker == nil || marker.SlideID != slideID {
			continue
		}

		position := entities.NewMarkerPosition(markerID, lang, entities.PositionSourceAutomatic)
		if word, ok := markertoken.FindAnchorWord(text, token.MarkerID, words); ok {
			start, end := word.Start, word.End
			position.CharStart = &start
			position.CharEnd = &end
			position.WordText = word.Text
		} else {
			start, end := token.Start, token.Start
			position.CharStart = &start
			position.CharEnd = &end
		}

		if err := s.markerRepo.UpsertPosition(ctx, position); err != nil {
			return anchored, apperrors.ErrDBQueryFailed("upsert reanchored position", err)
		}
		anchored++
	}
	s.invalidateLookup(ctx, slideID, lang)

	s.logger.Info("marker.reanchored",
		zap.String("slide_id", slideID.String()),
		zap.String("lang", lang),
		zap.Int("count", anchored),
	)

	return anchored, nil
}

// invalidateLookup drops the cached marker-time lookup for (slide, lang).
// Cache errors only get logged; the cache is an optimization, not state.
func (s *markerService) invalidateLookup(ctx context.Context, slideID uuid.UUID, lang string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.MarkerTimesKey(slideID, lang)); err != nil {
		s.logger.Warn("marker.cache_invalidate_failed",
			zap.String("slide_id", slideID.String()),
			zap.String("lang", lang),
			zap.Error(err),
		)
	}
}
