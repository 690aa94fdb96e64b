package server

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Preeth02/aqi-using-ai/internal/airquality"
	"github.com/Preeth02/aqi-using-ai/internal/cache"
	"github.com/Preeth02/aqi-using-ai/internal/suggest"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func TestGetAQI_CachesPerCity(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	var upstreamHits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&upstreamHits, 1)
		_, _ = w.Write([]byte(`{"overall_aqi":42}`))
	}))
	defer upstream.Close()

	s := &Server{air: airquality.NewClient(upstream.URL, "key", "http://unused", "")}
	app := fiber.New()
	app.Get("/api/getAQI/:city", s.GetAQI)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/getAQI/Delhi", nil), -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		_ = resp.Body.Close()
	}

	if hits := atomic.LoadInt32(&upstreamHits); hits != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits)
	}

	// A different city misses the cache
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/getAQI/Mumbai", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	_ = resp.Body.Close()
	if hits := atomic.LoadInt32(&upstreamHits); hits != 2 {
		t.Fatalf("expected 2 upstream hits, got %d", hits)
	}
}

func TestGetAQI_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"City not found"}`))
	}))
	defer upstream.Close()

	s := &Server{air: airquality.NewClient(upstream.URL, "key", "http://unused", "")}
	app := fiber.New()
	app.Get("/api/getAQI/:city", s.GetAQI)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/getAQI/Nowhere", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestSuggestMessages_Handler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"a||b||c"}}]}`))
		}))
		defer upstream.Close()

		s := &Server{suggester: suggest.NewClient(suggest.Config{BaseURL: upstream.URL, APIKey: "k", Model: "m"})}
		app := fiber.New()
		app.Post("/api/suggest-messages", s.SuggestMessages)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/suggest-messages", nil), -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("upstream failure maps to 502", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer upstream.Close()

		s := &Server{suggester: suggest.NewClient(suggest.Config{BaseURL: upstream.URL, APIKey: "k", Model: "m"})}
		app := fiber.New()
		app.Post("/api/suggest-messages", s.SuggestMessages)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/suggest-messages", nil), -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", resp.StatusCode)
		}
	})
}
