package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/assessrec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	recommend func(ctx context.Context, query string) ([]core.Recommendation, error)
	queries   []string
}

func (f *fakeService) Recommend(ctx context.Context, query string) ([]core.Recommendation, error) {
	f.queries = append(f.queries, query)
	return f.recommend(ctx, query)
}

func (f *fakeService) Len() int { return 42 }

func fixedService(recs ...core.Recommendation) *fakeService {
	return &fakeService{recommend: func(context.Context, string) ([]core.Recommendation, error) {
		return recs, nil
	}}
}

func newTestServer(t *testing.T, svc Service, opts ...Option) *Server {
	t.Helper()
	s, err := New(svc, opts...)
	require.NoError(t, err)
	return s
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrServiceRequired)

	_, err = New(fixedService(), WithTimeout(0))
	assert.Error(t, err)

	_, err = New(fixedService(), WithMaxBodyBytes(-1))
	assert.Error(t, err)

	_, err = New(fixedService(), WithLogger(nil))
	assert.NoError(t, err)
}

func TestRecommend(t *testing.T) {
	java := core.Recommendation{
		Name:                 "Java 8 (New)",
		URL:                  "https://example.com/java8",
		Duration:             18,
		TestType:             "K",
		RemoteTestingSupport: "Yes",
	}

	t.Run("success", func(t *testing.T) {
		svc := fixedService(java)
		rec := post(t, newTestServer(t, svc), `{"query": "java developer"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"recommendations":[{
			"name": "Java 8 (New)",
			"url": "https://example.com/java8",
			"duration": 18,
			"test_type": "K",
			"remote_testing_support": "Yes"
		}]}`, rec.Body.String())
		assert.Equal(t, []string{"java developer"}, svc.queries)
	})

	t.Run("no results is an empty list", func(t *testing.T) {
		rec := post(t, newTestServer(t, fixedService()), `{"query": "anything under 1 minute"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"recommendations":[]}`, rec.Body.String())
	})

	t.Run("empty query is accepted", func(t *testing.T) {
		svc := fixedService(java)
		rec := post(t, newTestServer(t, svc), `{"query": ""}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{""}, svc.queries)
	})

	t.Run("trailing whitespace is accepted", func(t *testing.T) {
		rec := post(t, newTestServer(t, fixedService(java)), "{\"query\": \"java\"}\n  ")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("extra fields are ignored", func(t *testing.T) {
		rec := post(t, newTestServer(t, fixedService(java)), `{"query": "java", "page": 2}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRecommend_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "invalid json", body: `{"query": `},
		{name: "missing query", body: `{"q": "java"}`},
		{name: "null query", body: `{"query": null}`},
		{name: "numeric query", body: `{"query": 42}`},
		{name: "array query", body: `{"query": ["java"]}`},
		{name: "not an object", body: `"java"`},
		{name: "trailing garbage", body: `{"query": "java"} trailing-garbage`},
		{name: "second object", body: `{"query": "java"}{"query": "python"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := fixedService()
			rec := post(t, newTestServer(t, svc), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec), core.ErrMalformedRequest.Error())
			assert.Empty(t, svc.queries, "malformed requests never reach the service")
		})
	}

	t.Run("body too large", func(t *testing.T) {
		s := newTestServer(t, fixedService(), WithMaxBodyBytes(16))
		rec := post(t, s, `{"query": "`+strings.Repeat("x", 64)+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecommend_Failures(t *testing.T) {
	t.Run("scoring error", func(t *testing.T) {
		svc := &fakeService{recommend: func(context.Context, string) ([]core.Recommendation, error) {
			return nil, errors.New("boom")
		}}
		rec := post(t, newTestServer(t, svc), `{"query": "java"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, core.ErrInternalScoring.Error(), decodeError(t, rec))
	})

	t.Run("panic is isolated", func(t *testing.T) {
		calls := 0
		svc := &fakeService{recommend: func(context.Context, string) ([]core.Recommendation, error) {
			calls++
			if calls == 1 {
				panic("corrupted state")
			}
			return []core.Recommendation{}, nil
		}}
		s := newTestServer(t, svc)

		first := post(t, s, `{"query": "java"}`)
		assert.Equal(t, http.StatusInternalServerError, first.Code)
		assert.Equal(t, core.ErrInternalScoring.Error(), decodeError(t, first))

		second := post(t, s, `{"query": "java"}`)
		assert.Equal(t, http.StatusOK, second.Code)
	})

	t.Run("timeout", func(t *testing.T) {
		svc := &fakeService{recommend: func(ctx context.Context, _ string) ([]core.Recommendation, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}
		rec := post(t, newTestServer(t, svc, WithTimeout(20*time.Millisecond)), `{"query": "java"}`)
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})
}

func TestRouting(t *testing.T) {
	s := newTestServer(t, fixedService())

	t.Run("health", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","assessments":42}`, rec.Body.String())
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recommend", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("request id header is propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
