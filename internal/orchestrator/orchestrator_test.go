package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozadaev/go_fashion_advisor/internal/fault"
	"github.com/akozadaev/go_fashion_advisor/internal/models"
	"github.com/akozadaev/go_fashion_advisor/internal/storage"
)

type stubClassifier struct {
	analysis models.Analysis
	err      error
	seen     []byte
}

func (s *stubClassifier) Classify(_ context.Context, path string) (models.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Analysis{}, err
	}
	s.seen = data
	return s.analysis, s.err
}

type stubAdvice struct {
	suggestErr error
	remixErr   error
	styles     []string
}

func (s *stubAdvice) SuggestOutfits(_ context.Context, style string) (string, error) {
	s.styles = append(s.styles, style)
	if s.suggestErr != nil {
		return "", s.suggestErr
	}
	return "suggest: " + style, nil
}

func (s *stubAdvice) RemixOutfit(_ context.Context, description string) (string, error) {
	if s.remixErr != nil {
		return "", s.remixErr
	}
	return "remix: " + description, nil
}

type stubWeather struct {
	snapshot *models.WeatherSnapshot
	err      error
	calls    int
}

func (s *stubWeather) Fetch(_ context.Context, _, _ float64) (*models.WeatherSnapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

type failingStore struct{}

func (failingStore) Save(string, io.Reader) (*storage.StoredUpload, error) {
	return nil, errors.New("disk full")
}

var casual = models.Analysis{
	Feedback:          "This outfit is casual! It also works well for sporty and streetwear.",
	OutfitDescription: "The outfit includes a t-shirt, shorts, and hoodie.",
}

func newStore(t *testing.T) (*storage.UploadStorage, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewUploadStorage(dir)
	require.NoError(t, err)
	return store, dir
}

func input(coords *models.Coordinates) UploadInput {
	return UploadInput{Filename: "look.png", File: strings.NewReader("image-bytes"), Coordinates: coords}
}

func TestProcessWithWeather(t *testing.T) {
	store, dir := newStore(t)
	cls := &stubClassifier{analysis: casual}
	adv := &stubAdvice{}
	w := &stubWeather{snapshot: &models.WeatherSnapshot{Temperature: 5, Condition: models.ConditionRain}}

	resp, err := New(cls, adv, w, store).Process(context.Background(), input(&models.Coordinates{Lat: 10, Lon: 10}))
	require.NoError(t, err)

	assert.Equal(t, casual.Feedback, resp.Feedback)
	assert.Equal(t, "suggest: "+casual.Feedback, resp.Recommendations)
	assert.Equal(t, "remix: "+casual.OutfitDescription, resp.RemixingSuggestions)
	assert.Equal(t, "It's very cold! Consider wearing pants instead of shorts. You should wear a jacket. "+
		"It's raining. Don't forget an umbrella or a raincoat!", resp.WeatherRecommendations)
	assert.Equal(t, []byte("image-bytes"), cls.seen)
	assert.Equal(t, []string{casual.Feedback}, adv.styles)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "upload must be removed after the request")
}

func TestProcessWithoutCoordinates(t *testing.T) {
	store, _ := newStore(t)
	w := &stubWeather{}

	resp, err := New(&stubClassifier{analysis: casual}, &stubAdvice{}, w, store).Process(context.Background(), input(nil))
	require.NoError(t, err)
	assert.Empty(t, resp.WeatherRecommendations)
	assert.Zero(t, w.calls)
}

func TestProcessWeatherFailureContinues(t *testing.T) {
	store, _ := newStore(t)
	w := &stubWeather{err: fault.New(fault.KindUpstream, "weather.fetch", errors.New("status 500"))}

	resp, err := New(&stubClassifier{analysis: casual}, &stubAdvice{}, w, store).
		Process(context.Background(), input(&models.Coordinates{Lat: 1, Lon: 2}))
	require.NoError(t, err)
	assert.Empty(t, resp.WeatherRecommendations)
	assert.Equal(t, casual.Feedback, resp.Feedback)
	assert.Equal(t, 1, w.calls)
}

func TestProcessClassificationFallback(t *testing.T) {
	store, _ := newStore(t)
	cls := &stubClassifier{err: fault.New(fault.KindUpstream, "classifier.score", errors.New("connection refused"))}

	resp, err := New(cls, &stubAdvice{}, nil, store).Process(context.Background(), input(nil))
	require.NoError(t, err)
	assert.Equal(t, "Error analyzing outfit.", resp.Feedback)
	assert.Equal(t, "suggest: Error analyzing outfit.", resp.Recommendations)
	assert.Equal(t, "remix: Outfit analysis failed.", resp.RemixingSuggestions)
}

func TestProcessAdviceFailureUsesMessage(t *testing.T) {
	store, _ := newStore(t)
	adv := &stubAdvice{
		suggestErr: fault.WithMessage(fault.KindUpstream, "advice.suggestions", "Network error during API call: dial tcp: refused", nil),
		remixErr:   fault.WithMessage(fault.KindMalformed, "advice.remix", "Error generating remixing suggestions: bad json", nil),
	}

	resp, err := New(&stubClassifier{analysis: casual}, adv, nil, store).Process(context.Background(), input(nil))
	require.NoError(t, err)
	assert.Equal(t, "Network error during API call: dial tcp: refused", resp.Recommendations)
	assert.Equal(t, "Error generating remixing suggestions: bad json", resp.RemixingSuggestions)
}

func TestProcessPersistenceFailure(t *testing.T) {
	cls := &stubClassifier{analysis: casual}

	_, err := New(cls, &stubAdvice{}, nil, failingStore{}).Process(context.Background(), input(nil))
	require.Error(t, err)
	assert.Equal(t, fault.KindInternal, fault.KindOf(err))
	assert.Nil(t, cls.seen)
}

func TestProcessCancelledContext(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(&stubClassifier{analysis: casual}, &stubAdvice{}, nil, store).Process(ctx, input(nil))
	require.Error(t, err)
	assert.Equal(t, fault.KindInternal, fault.KindOf(err))
	assert.Contains(t, err.Error(), context.Canceled.Error())
}

func TestProcessIsIdempotent(t *testing.T) {
	store, _ := newStore(t)
	w := &stubWeather{snapshot: &models.WeatherSnapshot{Temperature: 12, Condition: models.ConditionClear}}
	o := New(&stubClassifier{analysis: casual}, &stubAdvice{}, w, store)

	var first []byte
	for i := 0; i < 3; i++ {
		resp, err := o.Process(context.Background(), input(&models.Coordinates{Lat: 10, Lon: 10}))
		require.NoError(t, err)
		body, err := json.Marshal(resp)
		require.NoError(t, err)
		if first == nil {
			first = body
			continue
		}
		assert.Equal(t, string(first), string(body))
	}
}

func TestProcessSameFilenameDoesNotCollide(t *testing.T) {
	store, dir := newStore(t)
	blocker := &blockingClassifier{release: make(chan struct{}), entered: make(chan string, 2)}
	o := New(blocker, constAdvice{}, nil, store)

	errs := make(chan error, 2)
	for _, body := range []string{"first", "second"} {
		go func(body string) {
			_, err := o.Process(context.Background(), UploadInput{Filename: "same.png", File: strings.NewReader(body)})
			errs <- err
		}(body)
	}

	paths := []string{<-blocker.entered, <-blocker.entered}
	assert.NotEqual(t, paths[0], paths[1])
	for _, p := range paths {
		assert.Equal(t, "same.png", filepath.Base(p))
	}
	close(blocker.release)
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type blockingClassifier struct {
	release chan struct{}
	entered chan string
}

func (b *blockingClassifier) Classify(ctx context.Context, path string) (models.Analysis, error) {
	b.entered <- path
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return casual, nil
}

type constAdvice struct{}

func (constAdvice) SuggestOutfits(context.Context, string) (string, error) { return "suggest", nil }

func (constAdvice) RemixOutfit(context.Context, string) (string, error) { return "remix", nil }
