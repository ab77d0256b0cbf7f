// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package familysearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kinpath/internal/httputil"
	"github.com/pdiddy/kinpath/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const personJSON = `{
  "persons": [{"id": "KWCJ-RN4", "display": {"name": "Maria Silva"}}],
  "childAndParentsRelationships": [
    {"parent1": {"resourceId": "LZ11-AAA"}, "parent2": {"resourceId": "LZ11-BBB"}, "child": {"resourceId": "KWCJ-RN4"}},
    {"father": {"resourceId": "KWCJ-RN4"}, "mother": {"resourceId": "SP00-001"}, "child": {"resourceId": "CH00-001"}},
    {"parent1": {"resourceId": "SP00-001"}, "child": {"resourceId": "CH00-002"}}
  ],
  "relationships": [
    {"type": "http://gedcomx.org/Couple", "person1": {"resourceId": "SP00-001"}, "person2": {"resourceId": "KWCJ-RN4"}},
    {"type": "http://gedcomx.org/ParentChild", "person1": {"resourceId": "LZ11-AAA"}, "person2": {"resourceId": "KWCJ-RN4"}}
  ]
}`

func newTestClient(t *testing.T, ts *httptest.Server, pc types.ProviderConfig) *Client {
	t.Helper()
	pc.BaseURL = ts.URL
	c, err := New(pc, types.HTTPConfig{UserAgent: "kinpath-test"}, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return c
}

func TestFetchRelatives(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, personJSON)
	}))
	defer ts.Close()

	c := newTestClient(t, ts, types.ProviderConfig{AccessToken: "tok"})
	rec := c.FetchRelatives(context.Background(), "KWCJ-RN4")

	require.NotNil(t, captured)
	assert.Equal(t, "/platform/tree/persons/KWCJ-RN4", captured.URL.Path)
	assert.Equal(t, "Bearer tok", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.Header.Get("Accept"))
	assert.Equal(t, "kinpath-test", captured.Header.Get("User-Agent"))

	assert.True(t, rec.FetchedOK)
	assert.Equal(t, "Maria Silva", rec.Name)
	assert.Equal(t, []types.PersonID{"LZ11-AAA", "LZ11-BBB"}, rec.Parents)
	assert.Equal(t, []types.PersonID{"CH00-001"}, rec.Children)
	assert.Equal(t, []types.PersonID{"SP00-001"}, rec.Spouses)
}

func TestFetchRelativesFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "{not json") }},
		{"persistent 503", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			c := newTestClient(t, ts, types.ProviderConfig{AccessToken: "tok", MaxRetries: 1})
			rec := c.FetchRelatives(context.Background(), "KWCJ-RN4")
			assert.False(t, rec.FetchedOK)
			assert.Equal(t, types.PersonID("KWCJ-RN4"), rec.PersonID)
			assert.Empty(t, rec.Parents)
			assert.Empty(t, rec.Children)
			assert.Empty(t, rec.Spouses)
		})
	}
}

func TestFetchRelativesRetriesTransientErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, personJSON)
	}))
	defer ts.Close()

	c := newTestClient(t, ts, types.ProviderConfig{AccessToken: "tok"})
	rec := c.FetchRelatives(context.Background(), "KWCJ-RN4")
	assert.True(t, rec.FetchedOK)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchRelativesWithoutToken(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	c := newTestClient(t, ts, types.ProviderConfig{})
	rec := c.FetchRelatives(context.Background(), "KWCJ-RN4")
	assert.False(t, rec.FetchedOK)
	assert.Zero(t, atomic.LoadInt32(&calls), "no request is sent without credentials")
}

func TestUnauthenticatedSession(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "unauthenticated_session", r.PostForm.Get("grant_type"))
		assert.Equal(t, "app-key", r.PostForm.Get("client_id"))
		assert.Equal(t, "10.0.0.1", r.PostForm.Get("ip_address"))
		fmt.Fprint(w, `{"access_token": "session-tok"}`)
	})
	mux.HandleFunc("/platform/tree/persons/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer session-tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, personJSON)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(types.ProviderConfig{BaseURL: ts.URL, AppKey: "app-key"}, types.HTTPConfig{},
		WithHTTPClient(ts.Client()), WithClientIP("10.0.0.1"))
	require.NoError(t, err)
	c.SetTokenURL(ts.URL + "/token")

	assert.True(t, c.FetchRelatives(context.Background(), "KWCJ-RN4").FetchedOK)
	assert.True(t, c.FetchRelatives(context.Background(), "KWCJ-RN4").FetchedOK)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls), "session token is reused")
}

func TestUnauthenticatedSessionRenewedOn401(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&tokenCalls, 1)
		fmt.Fprintf(w, `{"access_token": "session-%d"}`, n)
	})
	mux.HandleFunc("/platform/tree/persons/", func(w http.ResponseWriter, r *http.Request) {
		// Only the second session is valid; the first has expired.
		if r.Header.Get("Authorization") != "Bearer session-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, personJSON)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(types.ProviderConfig{BaseURL: ts.URL, AppKey: "app-key"}, types.HTTPConfig{}, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	c.SetTokenURL(ts.URL + "/token")

	assert.True(t, c.FetchRelatives(context.Background(), "KWCJ-RN4").FetchedOK)
	assert.True(t, c.FetchRelatives(context.Background(), "KWCJ-RN4").FetchedOK)
	assert.Equal(t, int32(2), atomic.LoadInt32(&tokenCalls), "expired session is renewed once")
}

func TestConfiguredTokenNotRenewedOn401(t *testing.T) {
	var tokenCalls, calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		fmt.Fprint(w, `{"access_token": "session"}`)
	})
	mux.HandleFunc("/platform/tree/persons/", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(types.ProviderConfig{BaseURL: ts.URL, AccessToken: "fixed", AppKey: "app-key"}, types.HTTPConfig{}, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	c.SetTokenURL(ts.URL + "/token")

	assert.False(t, c.FetchRelatives(context.Background(), "KWCJ-RN4").FetchedOK)
	assert.Zero(t, atomic.LoadInt32(&tokenCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestUnauthenticatedSessionRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c, err := New(types.ProviderConfig{BaseURL: ts.URL, AppKey: "app-key"}, types.HTTPConfig{}, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	c.SetTokenURL(ts.URL + "/token")

	_, _, err = c.FindRelationship(context.Background(), "AAAA-111", "BBBB-222")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFindRelationship(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantIDs    []types.PersonID
		wantCommon types.PersonID
		wantErr    error
	}{
		{
			name: "common ancestor role",
			body: `{"persons":[
				{"id":"AAAA-111"},
				{"id":"PPPP-111"},
				{"id":"GGGG-111","displayProperties":{"role":"commonAncestor"}},
				{"id":"QQQQ-111"},
				{"id":"BBBB-222"}]}`,
			wantIDs:    []types.PersonID{"AAAA-111", "PPPP-111", "GGGG-111", "QQQQ-111", "BBBB-222"},
			wantCommon: "GGGG-111",
		},
		{
			name:       "middle node fallback",
			body:       `{"persons":[{"id":"AAAA-111"},{"id":"PPPP-111"},{"id":"BBBB-222"}]}`,
			wantIDs:    []types.PersonID{"AAAA-111", "PPPP-111", "BBBB-222"},
			wantCommon: "PPPP-111",
		},
		{
			name:    "endpoints do not match",
			body:    `{"persons":[{"id":"XXXX-111"},{"id":"BBBB-222"}]}`,
			wantErr: ErrNoPath,
		},
		{
			name:    "empty",
			body:    `{}`,
			wantErr: ErrNoPath,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *http.Request
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = r
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			c := newTestClient(t, ts, types.ProviderConfig{AccessToken: "tok"})
			ids, common, err := c.FindRelationship(context.Background(), "AAAA-111", "BBBB-222")

			require.NotNil(t, captured)
			assert.Equal(t, "/platform/tree/persons/AAAA-111/relationships/BBBB-222", captured.URL.Path)
			assert.Equal(t, "true", captured.URL.Query().Get("personDetails"))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantCommon, common)
		})
	}
}

func TestNew(t *testing.T) {
	c, err := New(types.ProviderConfig{}, types.HTTPConfig{Timeout: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, Environments["beta"].API, c.endpoints.API)
	assert.Equal(t, maxTimeout, c.http.Timeout)
	assert.Equal(t, defaultUserAgent, c.userAgent)
	assert.Equal(t, "familysearch", c.Name())

	c, err = New(types.ProviderConfig{Environment: "prod"}, types.HTTPConfig{})
	require.NoError(t, err)
	assert.Equal(t, Environments["production"].API, c.endpoints.API)
	assert.Equal(t, defaultTimeout, c.http.Timeout)

	_, err = New(types.ProviderConfig{Environment: "staging"}, types.HTTPConfig{})
	require.Error(t, err)
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		raw   string
		want  types.PersonID
		valid bool
	}{
		{" kwcj-rn4 ", "KWCJ-RN4", true},
		{"LZ11-AB12", "LZ11-AB12", true},
		{"kwcj_rn4", "KWCJ_RN4", false},
		{"KW-RN4", "KW-RN4", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := NormalizeID(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ValidID(got))
		})
	}
}
