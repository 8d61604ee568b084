package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archeohub-backend/internal/models"
)

func TestBingSearch_NoKeySkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	got := NewBingSearch("", srv.URL).Search(context.Background(), "pompeii")

	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, calls.Load())
}

func TestBingSearch_TruncatesAndMaps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "rosetta stone", r.URL.Query().Get("q"))
		assert.Equal(t, "4", r.URL.Query().Get("count"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"webPages":{"value":[
			{"name":"One","url":"https://1","snippet":"s1"},
			{"name":"Two","url":"https://2","snippet":"s2"},
			{"name":"Three","url":"https://3"},
			{"name":"Four","url":"https://4","snippet":"s4"},
			{"name":"Five","url":"https://5","snippet":"s5"}
		]}}`)
	}))
	defer srv.Close()

	got := NewBingSearch("key-123", srv.URL).Search(context.Background(), "rosetta stone")

	require.Len(t, got, models.MaxSources)
	assert.Equal(t, models.Source{URL: "https://1", Title: "One", Excerpt: "s1"}, got[0])
	assert.Equal(t, models.Source{URL: "https://3", Title: "Three"}, got[2])
	assert.Equal(t, "https://4", got[3].URL)
}

func TestBingSearch_FailuresDegradeToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusForbidden)
		}},
		{"malformed payload", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"webPages":`)
		}},
		{"no webPages", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"_type":"SearchResponse"}`)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			got := NewBingSearch("key", srv.URL).Search(context.Background(), "q")
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestBingSearch_TransportErrorDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	got := NewBingSearch("key", endpoint).Search(context.Background(), "q")
	require.NotNil(t, got)
	assert.Empty(t, got)
}
