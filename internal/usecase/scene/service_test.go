package scene

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slidevoxdev/slidevox/internal/domain/entities"
	"github.com/slidevoxdev/slidevox/internal/infrastructure/cache"
	"github.com/slidevoxdev/slidevox/pkg/wordtiming"
)

type fakeSlideRepo struct {
	slides map[uuid.UUID]*entities.Slide
}

func (f *fakeSlideRepo) Create(_ context.Context, slide *entities.Slide) error {
	f.slides[slide.ID] = slide
	return nil
}

func (f *fakeSlideRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Slide, error) {
	return f.slides[id], nil
}

func (f *fakeSlideRepo) UpdateLayers(_ context.Context, id uuid.UUID, layers []entities.Layer) error {
	if s, ok := f.slides[id]; ok {
		s.Layers = layers
	}
	return nil
}

func (f *fakeSlideRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.slides, id)
	return nil
}

type fakeMarkerRepo struct {
	positions []entities.MarkerPosition
	legacy    []entities.LegacyMarker
	listCalls int
}

func (f *fakeMarkerRepo) CreateMarker(context.Context, *entities.GlobalMarker) error { return nil }

func (f *fakeMarkerRepo) FindMarkerByID(context.Context, uuid.UUID) (*entities.GlobalMarker, error) {
	return nil, nil
}

func (f *fakeMarkerRepo) ListMarkersBySlide(context.Context, uuid.UUID) ([]entities.GlobalMarker, error) {
	return nil, nil
}

func (f *fakeMarkerRepo) UpsertPosition(context.Context, *entities.MarkerPosition) error { return nil }

func (f *fakeMarkerRepo) FindPosition(context.Context, uuid.UUID, string) (*entities.MarkerPosition, error) {
	return nil, nil
}

func (f *fakeMarkerRepo) ListPositionsByLang(_ context.Context, _ uuid.UUID, lang string) ([]entities.MarkerPosition, error) {
	f.listCalls++
	var out []entities.MarkerPosition
	for _, p := range f.positions {
		if p.Lang == lang {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeMarkerRepo) ListLegacyMarkers(_ context.Context, _ uuid.UUID, lang string) ([]entities.LegacyMarker, error) {
	var out []entities.LegacyMarker
	for _, l := range f.legacy {
		if l.Lang == lang {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeScriptRepo struct {
	normalized map[string]*entities.NormalizedScript
}

func (f *fakeScriptRepo) FindScript(context.Context, uuid.UUID, string) (*entities.SlideScript, error) {
	return nil, nil
}

func (f *fakeScriptRepo) UpsertScript(context.Context, *entities.SlideScript) error { return nil }

func (f *fakeScriptRepo) ListScriptLangs(context.Context, uuid.UUID) ([]string, error) {
	return nil, nil
}

func (f *fakeScriptRepo) SetNeedsRetranslate(context.Context, uuid.UUID, string, bool) error {
	return nil
}

func (f *fakeScriptRepo) FindNormalized(_ context.Context, _ uuid.UUID, lang string) (*entities.NormalizedScript, error) {
	return f.normalized[lang], nil
}

func (f *fakeScriptRepo) UpsertNormalized(context.Context, *entities.NormalizedScript) error {
	return nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func setup() (*fakeSlideRepo, *fakeMarkerRepo, *fakeScriptRepo, Service) {
	slideRepo := &fakeSlideRepo{slides: make(map[uuid.UUID]*entities.Slide)}
	markerRepo := &fakeMarkerRepo{}
	scriptRepo := &fakeScriptRepo{normalized: make(map[string]*entities.NormalizedScript)}
	svc := NewService(slideRepo, markerRepo, scriptRepo, cache.NewMemoryStore(), zap.NewNop())
	return slideRepo, markerRepo, scriptRepo, svc
}

func TestGetResolvedScene(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves marker and word triggers", func(t *testing.T) {
		slideRepo, markerRepo, scriptRepo, svc := setup()

		markerID := uuid.New()
		slide := entities.NewSlide("demo")
		slide.Layers = []entities.Layer{
			{
				ID:       "chart",
				Kind:     "image",
				Entrance: &entities.Trigger{Type: entities.TriggerTypeMarker, MarkerID: markerID.String()},
				Exit:     &entities.Trigger{Type: entities.TriggerTypeEnd, OffsetSeconds: floatPtr(-0.5)},
			},
			{
				ID:       "caption",
				Kind:     "text",
				Entrance: &entities.Trigger{Type: entities.TriggerTypeWord, CharStart: intPtr(8), CharEnd: intPtr(15), WordText: "doubled"},
			},
		}
		require.NoError(t, slideRepo.Create(ctx, slide))

		markerRepo.positions = []entities.MarkerPosition{
			{MarkerID: markerID, Lang: "en", TimeSeconds: floatPtr(2.4)},
		}
		norm := entities.NewNormalizedScript(slide.ID, "en")
		norm.WordTimings = []wordtiming.WordTiming{
			{CharStart: 0, CharEnd: 7, StartTime: 0, EndTime: 0.5, Word: "Revenue"},
			{CharStart: 8, CharEnd: 15, StartTime: 0.5, EndTime: 1.1, Word: "doubled"},
		}
		scriptRepo.normalized["en"] = norm

		scene, err := svc.GetResolvedScene(ctx, slide.ID, "en", 0.1)
		require.NoError(t, err)
		// Boundary exit trigger is not counted, only word/marker resolutions.
		assert.Equal(t, 2, scene.Total)
		assert.Equal(t, 2, scene.Resolved)

		entrance := scene.Layers[0].Entrance
		assert.Equal(t, entities.TriggerTypeTime, entrance.Type)
		assert.InDelta(t, 2.5, *entrance.Seconds, 1e-9)
		assert.Equal(t, entities.TriggerTypeMarker, entrance.OriginalType)
		assert.Equal(t, entities.ResolutionGlobalMarker, entrance.ResolutionMethod)

		caption := scene.Layers[1].Entrance
		assert.Equal(t, entities.TriggerTypeTime, caption.Type)
		assert.InDelta(t, 0.6, *caption.Seconds, 1e-9)
		assert.Equal(t, entities.ResolutionWordTimingExact, caption.ResolutionMethod)

		// Boundary trigger passes through untouched.
		assert.Equal(t, entities.TriggerTypeEnd, scene.Layers[0].Exit.Type)

		// Persisted scene must not be mutated by resolution.
		assert.Equal(t, entities.TriggerTypeMarker, slide.Layers[0].Entrance.Type)
	})

	t.Run("word trigger prefers marker over word timing", func(t *testing.T) {
		slideRepo, markerRepo, scriptRepo, svc := setup()

		markerID := uuid.New()
		slide := entities.NewSlide("demo")
		slide.Layers = []entities.Layer{
			{
				ID:   "chart",
				Kind: "image",
				Entrance: &entities.Trigger{
					Type:      entities.TriggerTypeWord,
					CharStart: intPtr(0),
					MarkerID:  markerID.String(),
				},
			},
		}
		require.NoError(t, slideRepo.Create(ctx, slide))

		markerRepo.positions = []entities.MarkerPosition{
			{MarkerID: markerID, Lang: "en", TimeSeconds: floatPtr(3.0)},
		}
		norm := entities.NewNormalizedScript(slide.ID, "en")
		norm.WordTimings = []wordtiming.WordTiming{
			{CharStart: 0, CharEnd: 7, StartTime: 1.0, EndTime: 1.5, Word: "Revenue"},
		}
		scriptRepo.normalized["en"] = norm

		scene, err := svc.GetResolvedScene(ctx, slide.ID, "en", 0)
		require.NoError(t, err)
		trigger := scene.Layers[0].Entrance
		assert.InDelta(t, 3.0, *trigger.Seconds, 1e-9)
		assert.Equal(t, entities.ResolutionWordViaMarker, trigger.ResolutionMethod)
	})

	t.Run("marker id lookup trims and lowercases", func(t *testing.T) {
		slideRepo, markerRepo, _, svc := setup()

		markerID := uuid.New()
		slide := entities.NewSlide("demo")
		slide.Layers = []entities.Layer{
			{
				ID:   "chart",
				Kind: "image",
				Entrance: &entities.Trigger{
					Type:     entities.TriggerTypeMarker,
					MarkerID: " " + strings.ToUpper(markerID.String()) + " ",
				},
			},
		}
		require.NoError(t, slideRepo.Create(ctx, slide))

		markerRepo.positions = []entities.MarkerPosition{
			{MarkerID: markerID, Lang: "en", TimeSeconds: floatPtr(2.0)},
		}

		scene, err := svc.GetResolvedScene(ctx, slide.ID, "en", 0)
		require.NoError(t, err)
		assert.Equal(t, 1, scene.Resolved)
		trigger := scene.Layers[0].Entrance
		assert.Equal(t, entities.TriggerTypeTime, trigger.Type)
		assert.InDelta(t, 2.0, *trigger.Seconds, 1e-9)
	})

	t.Run("unresolvable triggers pass through unchanged", func(t *testing.T) {
		slideRepo, _, _, svc := setup()

		slide := entities.NewSlide("demo")
		slide.Layers = []entities.Layer{
			{
				ID:       "chart",
				Kind:     "image",
				Entrance: &entities.Trigger{Type: entities.TriggerTypeMarker, MarkerID: uuid.New().String()},
			},
		}
		require.NoError(t, slideRepo.Create(ctx, slide))

		scene, err := svc.GetResolvedScene(ctx, slide.ID, "en", 0)
		require.NoError(t, err)
		assert.Equal(t, 1, scene.Total)
		assert.Equal(t, 0, scene.Resolved)
		assert.Equal(t, entities.TriggerTypeMarker, scene.Layers[0].Entrance.Type)
		assert.Nil(t, scene.Layers[0].Entrance.Seconds)
	})

	t.Run("global position wins over legacy marker", func(t *testing.T) {
		slideRepo, markerRepo, _, svc := setup()

		markerID := uuid.New()
		slide := entities.NewSlide("demo")
		slide.Layers = []entities.Layer{
			{
				ID:       "chart",
				Kind:     "image",
				Entrance: &entities.Trigger{Type: entities.TriggerTypeMarker, MarkerID: markerID.String()},
			},
		}
		require.NoError(t, slideRepo.Create(ctx, slide))

		markerRepo.legacy = []entities.LegacyMarker{
			{SlideID: slide.ID, MarkerKey: markerID.String(), Lang: "en", TimeSeconds: 9.9},
		}
		markerRepo.positions = []entities.MarkerPosition{
			{MarkerID: markerID, Lang: "en", TimeSeconds: floatPtr(2.0)},
		}

		scene, err := svc.GetResolvedScene(ctx, slide.ID, "en", 0)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, *scene.Layers[0].Entrance.Seconds, 1e-9)
	})

	t.Run("lookup is cached per slide and lang", func(t *testing.T) {
		slideRepo, markerRepo, _, svc := setup()

		slide := entities.NewSlide("demo")
		require.NoError(t, slideRepo.Create(ctx, slide))

		_, err := svc.GetResolvedScene(ctx, slide.ID, "en", 0)
		require.NoError(t, err)
		_, err = svc.GetResolvedScene(ctx, slide.ID, "en", 0)
		require.NoError(t, err)
		assert.Equal(t, 1, markerRepo.listCalls)
	})

	t.Run("missing slide is an error", func(t *testing.T) {
		_, _, _, svc := setup()
		_, err := svc.GetResolvedScene(ctx, uuid.New(), "en", 0)
		assert.Error(t, err)
	})
}
