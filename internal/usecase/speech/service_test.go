package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slidevoxdev/slidevox/internal/domain/entities"
	"github.com/slidevoxdev/slidevox/internal/usecase/markers"
	"github.com/slidevoxdev/slidevox/pkg/markertoken"
	"github.com/slidevoxdev/slidevox/pkg/speechkit"
	"github.com/slidevoxdev/slidevox/pkg/wordtiming"
)

type fakeScriptRepo struct {
	scripts    map[string]*entities.SlideScript
	normalized map[string]*entities.NormalizedScript
}

func newFakeScriptRepo() *fakeScriptRepo {
	return &fakeScriptRepo{
		scripts:    make(map[string]*entities.SlideScript),
		normalized: make(map[string]*entities.NormalizedScript),
	}
}

func key(slideID uuid.UUID, lang string) string { return slideID.String() + "|" + lang }

func (f *fakeScriptRepo) FindScript(_ context.Context, slideID uuid.UUID, lang string) (*entities.SlideScript, error) {
	s, ok := f.scripts[key(slideID, lang)]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (f *fakeScriptRepo) UpsertScript(_ context.Context, script *entities.SlideScript) error {
	s := *script
	f.scripts[key(script.SlideID, script.Lang)] = &s
	return nil
}

func (f *fakeScriptRepo) ListScriptLangs(context.Context, uuid.UUID) ([]string, error) {
	return nil, nil
}

func (f *fakeScriptRepo) SetNeedsRetranslate(context.Context, uuid.UUID, string, bool) error {
	return nil
}

func (f *fakeScriptRepo) FindNormalized(_ context.Context, slideID uuid.UUID, lang string) (*entities.NormalizedScript, error) {
	n, ok := f.normalized[key(slideID, lang)]
	if !ok {
		return nil, nil
	}
	out := *n
	return &out, nil
}

func (f *fakeScriptRepo) UpsertNormalized(_ context.Context, script *entities.NormalizedScript) error {
	n := *script
	f.normalized[key(script.SlideID, script.Lang)] = &n
	return nil
}

// fakeMarkers records pipeline calls into the marker store.
type fakeMarkers struct {
	recomputeCalls int
	recomputeRet   int
	insertCalls    int
	reanchorCalls  int
	reanchorRet    int
}

func (f *fakeMarkers) CreateFromWord(context.Context, markers.CreateFromWordInput) (*entities.GlobalMarker, string, error) {
	return nil, "", nil
}

func (f *fakeMarkers) ListForSlide(context.Context, uuid.UUID) ([]markers.MarkerWithPositions, error) {
	return nil, nil
}

func (f *fakeMarkers) Propagate(context.Context, uuid.UUID, string, string) (int, error) {
	return 0, nil
}

func (f *fakeMarkers) RecomputeTimes(context.Context, uuid.UUID, string) (int, error) {
	f.recomputeCalls++
	return f.recomputeRet, nil
}

func (f *fakeMarkers) InsertTokens(context.Context, uuid.UUID, string) (int, string, error) {
	f.insertCalls++
	return 0, "", nil
}

func (f *fakeMarkers) ReanchorFromTokens(context.Context, uuid.UUID, string) (int, error) {
	f.reanchorCalls++
	return f.reanchorRet, nil
}

func (f *fakeMarkers) MigrateWordTriggers(context.Context, uuid.UUID, string) (*markers.MigrationResult, error) {
	return nil, nil
}

type fakeTTS struct {
	result  *speechkit.SynthesisResult
	err     error
	gotText string
}

func (f *fakeTTS) Synthesize(_ context.Context, text, _, _ string) (*speechkit.SynthesisResult, error) {
	f.gotText = text
	return f.result, f.err
}

type fakeTranslator struct {
	out     string
	err     error
	gotText string
}

func (f *fakeTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	f.gotText = text
	return f.out, f.err
}

type fakeUploader struct {
	url     string
	gotName string
	gotData []byte
}

func (f *fakeUploader) UploadAudio(_ context.Context, objectName string, data []byte, _ string) (string, error) {
	f.gotName = objectName
	f.gotData = data
	return f.url, nil
}

func audioB64() string {
	return base64.StdEncoding.EncodeToString([]byte("mp3-bytes"))
}

func TestSynthesize(t *testing.T) {
	ctx := context.Background()
	slideID := uuid.New()

	seed := func(repo *fakeScriptRepo, text string) {
		script := entities.NewSlideScript(slideID, "en", text)
		repo.scripts[key(slideID, "en")] = script
	}

	t.Run("aligned synthesis stores audio url and timings", func(t *testing.T) {
		repo := newFakeScriptRepo()
		seed(repo, "Hi there")

		// One provider character per rune, 0.1s each.
		chars := make([]string, 8)
		starts := make([]float64, 8)
		ends := make([]float64, 8)
		for i, r := range []rune("Hi there") {
			chars[i] = string(r)
			starts[i] = float64(i) * 0.1
			ends[i] = float64(i+1) * 0.1
		}
		tts := &fakeTTS{result: &speechkit.SynthesisResult{
			AudioBase64:     audioB64(),
			DurationSeconds: 0.8,
			Alignment:       &wordtiming.CharAlignment{Characters: chars, CharStartTimes: starts, CharEndTimes: ends},
		}}
		uploader := &fakeUploader{url: "https://cdn.example.com/audio/x/en.mp3"}
		markerSvc := &fakeMarkers{recomputeRet: 2}

		svc := NewService(repo, markerSvc, tts, &fakeTranslator{}, uploader, zap.NewNop())
		outcome, err := svc.Synthesize(ctx, slideID, "en", "")
		require.NoError(t, err)

		assert.Equal(t, uploader.url, outcome.AudioURL)
		assert.Equal(t, 2, outcome.WordCount)
		assert.False(t, outcome.TimingsEstimated)
		assert.Equal(t, 2, outcome.MarkersUpdated)
		assert.Equal(t, 1, markerSvc.recomputeCalls)
		assert.Equal(t, []byte("mp3-bytes"), uploader.gotData)

		norm := repo.normalized[key(slideID, "en")]
		require.NotNil(t, norm)
		require.Len(t, norm.WordTimings, 2)
		assert.Equal(t, "Hi", norm.WordTimings[0].Word)
		assert.InDelta(t, 0.3, norm.WordTimings[1].StartTime, 1e-9)

		script := repo.scripts[key(slideID, "en")]
		assert.Equal(t, uploader.url, script.AudioURL)
	})

	t.Run("falls back to estimated timings without alignment", func(t *testing.T) {
		repo := newFakeScriptRepo()
		seed(repo, "Hi there")

		tts := &fakeTTS{result: &speechkit.SynthesisResult{
			AudioBase64:     audioB64(),
			DurationSeconds: 7.0,
		}}
		svc := NewService(repo, &fakeMarkers{}, tts, &fakeTranslator{}, &fakeUploader{url: "u"}, zap.NewNop())

		outcome, err := svc.Synthesize(ctx, slideID, "en", "")
		require.NoError(t, err)
		assert.True(t, outcome.TimingsEstimated)
		assert.Equal(t, 2, outcome.WordCount)

		norm := repo.normalized[key(slideID, "en")]
		assert.InDelta(t, 2.0, norm.WordTimings[0].EndTime, 1e-9)
		assert.InDelta(t, 7.0, norm.WordTimings[1].EndTime, 1e-9)
	})

	t.Run("provider failure surfaces as synthesis error", func(t *testing.T) {
		repo := newFakeScriptRepo()
		seed(repo, "Hi there")

		tts := &fakeTTS{err: errors.New("provider down")}
		svc := NewService(repo, &fakeMarkers{}, tts, &fakeTranslator{}, &fakeUploader{}, zap.NewNop())

		_, err := svc.Synthesize(ctx, slideID, "en", "")
		assert.Error(t, err)
	})

	t.Run("missing and empty scripts are rejected", func(t *testing.T) {
		repo := newFakeScriptRepo()
		svc := NewService(repo, &fakeMarkers{}, &fakeTTS{}, &fakeTranslator{}, &fakeUploader{}, zap.NewNop())

		_, err := svc.Synthesize(ctx, slideID, "en", "")
		assert.Error(t, err)

		seed(repo, "   ")
		_, err = svc.Synthesize(ctx, slideID, "en", "")
		assert.Error(t, err)
	})
}

func TestTranslate(t *testing.T) {
	ctx := context.Background()
	slideID := uuid.New()
	token := markertoken.Format(uuid.New().String())

	t.Run("stores target script and reanchors tokens", func(t *testing.T) {
		repo := newFakeScriptRepo()
		source := entities.NewSlideScript(slideID, "en", "Revenue "+token+"doubled")
		repo.scripts[key(slideID, "en")] = source

		stale := entities.NewSlideScript(slideID, "de", "alt")
		stale.AudioURL = "https://cdn/old.mp3"
		stale.NeedsRetranslate = true
		repo.scripts[key(slideID, "de")] = stale

		translator := &fakeTranslator{out: "Der Umsatz " + token + "verdoppelte sich"}
		markerSvc := &fakeMarkers{reanchorRet: 1}
		svc := NewService(repo, markerSvc, &fakeTTS{}, translator, &fakeUploader{}, zap.NewNop())

		outcome, err := svc.Translate(ctx, slideID, "en", "de")
		require.NoError(t, err)
		assert.Equal(t, translator.out, outcome.TranslatedText)
		assert.Equal(t, 1, outcome.TokensCarried)
		assert.Equal(t, 1, outcome.PositionsReanchored)
		assert.Equal(t, 1, markerSvc.insertCalls)
		assert.Equal(t, 1, markerSvc.reanchorCalls)
		assert.Equal(t, source.Text, translator.gotText)

		target := repo.scripts[key(slideID, "de")]
		assert.Equal(t, translator.out, target.Text)
		assert.False(t, target.NeedsRetranslate)
		assert.Empty(t, target.AudioURL)

		norm := repo.normalized[key(slideID, "de")]
		require.NotNil(t, norm)
		assert.True(t, norm.ContainsMarkerTokens)
		assert.Empty(t, norm.WordTimings)
	})

	t.Run("translation failure surfaces", func(t *testing.T) {
		repo := newFakeScriptRepo()
		source := entities.NewSlideScript(slideID, "en", "Revenue doubled")
		repo.scripts[key(slideID, "en")] = source

		translator := &fakeTranslator{err: errors.New("quota exceeded")}
		svc := NewService(repo, &fakeMarkers{}, &fakeTTS{}, translator, &fakeUploader{}, zap.NewNop())

		_, err := svc.Translate(ctx, slideID, "en", "de")
		assert.Error(t, err)
	})
}
