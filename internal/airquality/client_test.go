package airquality

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityAQI(t *testing.T) {
	const payload = `{"overall_aqi":42,"PM2.5":{"concentration":9.1,"aqi":38}}`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/airquality", r.URL.Path)
		assert.Equal(t, "New Delhi", r.URL.Query().Get("city"))
		assert.Equal(t, "ninja-key", r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte(payload))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "ninja-key", "http://unused", "")
	data, err := client.CityAQI(context.Background(), "New Delhi")
	require.NoError(t, err)

	// The upstream payload passes through untouched
	assert.JSONEq(t, payload, string(data))
}

func TestCityAQI_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"City not found"}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, "ninja-key", "http://unused", "")
	_, err := client.CityAQI(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestSearch(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/", r.URL.Path)
		assert.Equal(t, "delhi", r.URL.Query().Get("keyword"))
		assert.Equal(t, "waqi-token", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`{"status":"ok","data":[{"uid":123,"station":{"name":"Delhi"}}]}`))
	}))
	defer upstream.Close()

	client := NewClient("http://unused", "", upstream.URL, "waqi-token")
	data, err := client.Search(context.Background(), "delhi")
	require.NoError(t, err)

	// The {status, data} envelope is unwrapped
	assert.JSONEq(t, `[{"uid":123,"station":{"name":"Delhi"}}]`, string(data))
}

func TestBounds(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/map/bounds/", r.URL.Path)
		assert.Equal(t, "39.38,-123.0,36.0,-118.3", r.URL.Query().Get("latlng"))
		_, _ = w.Write([]byte(`{"status":"ok","data":[{"uid":7,"aqi":"55"}]}`))
	}))
	defer upstream.Close()

	client := NewClient("http://unused", "", upstream.URL, "waqi-token")
	data, err := client.Bounds(context.Background(), "39.38,-123.0,36.0,-118.3")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"uid":7,"aqi":"55"}]`, string(data))
}

func TestStationFeed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed/@123/", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","data":{"aqi":61,"idx":123}}`))
	}))
	defer upstream.Close()

	client := NewClient("http://unused", "", upstream.URL, "waqi-token")
	data, err := client.StationFeed(context.Background(), "123")
	require.NoError(t, err)
	assert.JSONEq(t, `{"aqi":61,"idx":123}`, string(data))
}

func TestWAQI_ErrorStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","data":"Invalid key"}`))
	}))
	defer upstream.Close()

	client := NewClient("http://unused", "", upstream.URL, "bad-token")
	_, err := client.Search(context.Background(), "delhi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"error"`)
}
