// Package scene resolves a slide's animation triggers against one
// language's narration timeline, turning word and marker triggers into
// absolute times for playback and export.
package scene

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/slidevoxdev/slidevox/errors"
	"github.com/slidevoxdev/slidevox/internal/domain/entities"
	"github.com/slidevoxdev/slidevox/internal/domain/repositories"
	"github.com/slidevoxdev/slidevox/internal/infrastructure/cache"
)

// lookupTTL bounds staleness of the cached marker-time lookup; position
// writes invalidate it eagerly, the TTL just catches anything missed.
const lookupTTL = 5 * time.Minute

// ResolvedScene is a slide's layer list with entrance/exit triggers
// converted to absolute times where the data allows it. Resolved and
// Total count only word and marker triggers; already-absolute triggers
// (time/start/end) pass through uncounted so the counts isolate the
// resolutions operators watch for stuck pipelines.
type ResolvedScene struct {
	SlideID  uuid.UUID        `json:"slide_id"`
	Lang     string           `json:"lang"`
	Layers   []entities.Layer `json:"layers"`
	Resolved int              `json:"resolved"`
	Total    int              `json:"total"`
}

// Service defines scene resolution operations
type Service interface {
	GetResolvedScene(ctx context.Context, slideID uuid.UUID, lang string, voiceOffset float64) (*ResolvedScene, error)
}

type sceneService struct {
	slideRepo  repositories.SlideRepository
	markerRepo repositories.MarkerRepository
	scriptRepo repositories.ScriptRepository
	cache      cache.Store
	logger     *zap.Logger
}

// NewService constructs the scene resolution service
func NewService(
	slideRepo repositories.SlideRepository,
	markerRepo repositories.MarkerRepository,
	scriptRepo repositories.ScriptRepository,
	cacheStore cache.Store,
	logger *zap.Logger,
) Service {
	return &sceneService{
		slideRepo:  slideRepo,
		markerRepo: markerRepo,
		scriptRepo: scriptRepo,
		cache:      cacheStore,
		logger:     logger,
	}
}

// GetResolvedScene loads the slide, resolves every trigger it can against
// the language's marker times and word timings, and reports how many
// resolved. Unresolvable triggers pass through unchanged; missing timing
// data is never an error.
func (s *sceneService) GetResolvedScene(ctx context.Context, slideID uuid.UUID, lang string, voiceOffset float64) (*ResolvedScene, error) {
	slide, err := s.slideRepo.FindByID(ctx, slideID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("load slide", err)
	}
	if slide == nil {
		return nil, apperrors.ErrSlideNotFound(slideID.String())
	}

	markerTimes, err := s.markerTimeLookup(ctx, slideID, lang)
	if err != nil {
		return nil, err
	}

	var timings []wordTimingIndex
	if norm, err := s.scriptRepo.FindNormalized(ctx, slideID, lang); err != nil {
		return nil, apperrors.ErrDBQueryFailed("load normalized script", err)
	} else if norm.HasTimings() {
		timings = make([]wordTimingIndex, 0, len(norm.WordTimings))
		for _, wt := range norm.WordTimings {
			timings = append(timings, wordTimingIndex{charStart: wt.CharStart, startTime: wt.StartTime})
		}
	}

	scene := &ResolvedScene{
		SlideID: slideID,
		Lang:    lang,
		Layers:  slide.CloneLayers(),
	}

	for i := range scene.Layers {
		for _, trigger := range []*entities.Trigger{scene.Layers[i].Entrance, scene.Layers[i].Exit} {
			if trigger == nil {
				continue
			}
			switch trigger.Type {
			case entities.TriggerTypeTime, entities.TriggerTypeStart, entities.TriggerTypeEnd:
				// already absolute, nothing to resolve
				continue
			}
			scene.Total++
			if resolveTrigger(trigger, markerTimes, timings, voiceOffset) {
				scene.Resolved++
			}
		}
	}

	s.logger.Debug("scene.resolved",
		zap.String("slide_id", slideID.String()),
		zap.String("lang", lang),
		zap.Int("resolved", scene.Resolved),
		zap.Int("total", scene.Total),
	)

	return scene, nil
}

type wordTimingIndex struct {
	charStart int
	startTime float64
}

// resolveTrigger rewrites one trigger in place to type "time" when its
// anchor has a known time. Falls through in order: marker id lookup, then
// exact character-offset match against word timings. Marker ids are
// trimmed and lowercased before the lookup since the map is keyed by
// canonical lowercase UUID strings.
func resolveTrigger(trigger *entities.Trigger, markerTimes map[string]float64, timings []wordTimingIndex, voiceOffset float64) bool {
	markerID := strings.ToLower(strings.TrimSpace(trigger.MarkerID))

	switch trigger.Type {
	case entities.TriggerTypeMarker:
		t, ok := markerTimes[markerID]
		if !ok {
			return false
		}
		rewrite(trigger, t+voiceOffset, entities.ResolutionGlobalMarker)
		return true

	case entities.TriggerTypeWord:
		if markerID != "" {
			if t, ok := markerTimes[markerID]; ok {
				rewrite(trigger, t+voiceOffset, entities.ResolutionWordViaMarker)
				return true
			}
		}
		if trigger.CharStart != nil {
			for _, wt := range timings {
				if wt.charStart == *trigger.CharStart {
					rewrite(trigger, wt.startTime+voiceOffset, entities.ResolutionWordTimingExact)
					return true
				}
			}
		}
		return false
	}
	return false
}

func rewrite(trigger *entities.Trigger, seconds float64, method string) {
	trigger.OriginalType = trigger.Type
	trigger.ResolutionMethod = method
	trigger.Type = entities.TriggerTypeTime
	trigger.Seconds = &seconds
}

// markerTimeLookup merges the language's marker times into a single map
// keyed by marker id. Global marker positions win over legacy marker rows
// sharing a key. The result is cached per (slide, lang).
func (s *sceneService) markerTimeLookup(ctx context.Context, slideID uuid.UUID, lang string) (map[string]float64, error) {
	key := cache.MarkerTimesKey(slideID, lang)
	if s.cache != nil {
		if raw, hit, err := s.cache.Get(ctx, key); err == nil && hit {
			lookup := make(map[string]float64)
			if err := json.Unmarshal([]byte(raw), &lookup); err == nil {
				return lookup, nil
			}
			// Corrupt cache entry; rebuild below.
		}
	}

	lookup := make(map[string]float64)

	legacy, err := s.markerRepo.ListLegacyMarkers(ctx, slideID, lang)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list legacy markers", err)
	}
	for _, l := range legacy {
		lookup[l.MarkerKey] = l.TimeSeconds
	}

	positions, err := s.markerRepo.ListPositionsByLang(ctx, slideID, lang)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list marker positions", err)
	}
	for _, p := range positions {
		if p.TimeSeconds != nil {
			lookup[p.MarkerID.String()] = *p.TimeSeconds
		}
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(lookup); err == nil {
			if err := s.cache.Set(ctx, key, string(encoded), lookupTTL); err != nil {
				s.logger.Warn("scene.cache_set_failed", zap.String("key", key), zap.Error(err))
			}
		}
	}

	return lookup, nil
}
