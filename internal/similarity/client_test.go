package similarity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSendsImageAndLabels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/score", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		assert.Equal(t, []string{"casual", "formal"}, r.MultipartForm.Value["labels"])
		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "img-bytes", string(data))
		assert.Equal(t, "look.png", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]any{"logits": []float64{21.5, 18.25}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	logits, err := c.Score(context.Background(), []byte("img-bytes"), "look.png", []string{"casual", "formal"})
	require.NoError(t, err)
	assert.Equal(t, []float64{21.5, 18.25}, logits)
}

func TestScoreRejectsCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"logits":[1]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Score(context.Background(), []byte("x"), "x.png", []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 scores for 2 labels")
}

func TestScoreUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Score(context.Background(), []byte("x"), "x.png", []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestScoreRequiresLabels(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", time.Second).Score(context.Background(), []byte("x"), "x.png", nil)
	require.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	require.NoError(t, c.HealthCheck(context.Background()))

	healthy.Store(false)
	require.Error(t, c.HealthCheck(context.Background()))
}
