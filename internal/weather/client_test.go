package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozadaev/go_fashion_advisor/internal/fault"
	"github.com/akozadaev/go_fashion_advisor/internal/models"
)

const currentBody = `{"coord":{"lon":10,"lat":10},"weather":[{"id":500,"main":"Rain","description":"light rain"}],"main":{"temp":5.2,"humidity":81},"name":"Somewhere"}`

func fakeWeather(t *testing.T, status int, body string, query *map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if query != nil {
			q := r.URL.Query()
			*query = map[string]string{
				"lat":   q.Get("lat"),
				"lon":   q.Get("lon"),
				"appid": q.Get("appid"),
				"units": q.Get("units"),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	var query map[string]string
	srv := fakeWeather(t, http.StatusOK, currentBody, &query)

	got, err := NewClient(srv.URL, "weather-key", time.Second).Fetch(context.Background(), 10, 10.5)
	require.NoError(t, err)
	assert.Equal(t, &models.WeatherSnapshot{Temperature: 5.2, Condition: models.ConditionRain, Summary: "rain"}, got)
	assert.Equal(t, map[string]string{"lat": "10", "lon": "10.5", "appid": "weather-key", "units": "metric"}, query)
}

func TestFetchRawPassthrough(t *testing.T) {
	srv := fakeWeather(t, http.StatusOK, currentBody, nil)

	raw, err := NewClient(srv.URL, "k", time.Second).FetchRaw(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.JSONEq(t, currentBody, string(raw))
}

func TestFetchErrorStatus(t *testing.T) {
	srv := fakeWeather(t, http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, nil)

	_, err := NewClient(srv.URL, "k", time.Second).Fetch(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, fault.KindUpstream, fault.KindOf(err))
	assert.Contains(t, err.Error(), "401")
}

func TestFetchInvalidJSON(t *testing.T) {
	srv := fakeWeather(t, http.StatusOK, `<html>oops</html>`, nil)

	_, err := NewClient(srv.URL, "k", time.Second).FetchRaw(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, fault.KindMalformed, fault.KindOf(err))
}

func TestFetchUnreachableRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "secret-key", time.Second).Fetch(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, fault.KindUpstream, fault.KindOf(err))
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestParseSnapshotMissingFields(t *testing.T) {
	for _, body := range []string{
		`{"weather":[{"main":"Clear"}]}`,
		`{"main":{"temp":3},"weather":[]}`,
		`[]`,
	} {
		_, err := ParseSnapshot([]byte(body))
		require.Error(t, err, body)
		assert.Equal(t, fault.KindMalformed, fault.KindOf(err), body)
	}
}

func TestNormalizeCondition(t *testing.T) {
	tests := map[string]string{
		"Rain":         models.ConditionRain,
		"light rain":   models.ConditionRain,
		"Snow":         models.ConditionSnow,
		"Clear":        models.ConditionClear,
		"Clouds":       models.ConditionOther,
		"Thunderstorm": models.ConditionOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCondition(in), in)
	}
}
