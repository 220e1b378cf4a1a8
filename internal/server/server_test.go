package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/sysresolve/pkg/artifact"
	"github.com/matzehuels/sysresolve/pkg/depmap"
	"github.com/matzehuels/sysresolve/pkg/observability"
	"github.com/matzehuels/sysresolve/pkg/resolver"
)

// stubResolver finds every artifact named "found" under /usr/share/java.
func stubResolver() resolver.Resolver {
	return resolver.ResolverFunc(func(_ context.Context, req resolver.Request) (resolver.Result, error) {
		switch req.Artifact.Name {
		case "found":
			res := resolver.Result{Path: "/usr/share/java/found.jar", Repository: "base-jar"}
			if req.ProviderNeeded {
				res.Provider = "found-pkg"
			}
			return res, nil
		case "broken":
			return resolver.Result{}, stderrors.New("counter unreadable")
		}
		return resolver.Result{}, nil
	})
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Resolver == nil {
		opts.Resolver = stubResolver()
	}
	ts := httptest.NewServer(New(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})
	var body map[string]string
	resp := getJSON(t, ts.URL+"/healthz", &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("GET /healthz = %d %v", resp.StatusCode, body)
	}
}

func TestResolveGet(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		name     string
		query    string
		status   int
		found    bool
		provider string
	}{
		{"found", "coordinate=g:found:1.0", http.StatusOK, true, ""},
		{"with provider", "coordinate=g:found&provider=true", http.StatusOK, true, "found-pkg"},
		{"missing", "coordinate=g:other", http.StatusOK, false, ""},
		{"no coordinate", "", http.StatusBadRequest, false, ""},
		{"bad coordinate", "coordinate=nocolon", http.StatusBadRequest, false, ""},
		{"resolver error", "coordinate=g:broken", http.StatusInternalServerError, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body ResolveResponse
			resp := getJSON(t, ts.URL+"/v1/resolve?"+tt.query, &body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if body.Found != tt.found || body.Provider != tt.provider {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestResolveBatch(t *testing.T) {
	ts := newTestServer(t, Options{})

	body := `{"requests":[{"coordinate":"g:found"},{"coordinate":"g:other:pom:2"},{"coordinate":"g:found","provider":true}]}`
	resp, err := http.Post(ts.URL+"/v1/resolve", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(out.Results))
	}
	if !out.Results[0].Found || out.Results[1].Found || out.Results[2].Provider != "found-pkg" {
		t.Errorf("results = %+v", out.Results)
	}
	if out.Results[1].Coordinate != "g:other:pom:2" || out.Results[1].PURL != "pkg:maven/g/other@2?type=pom" {
		t.Errorf("coordinate = %q, purl = %q", out.Results[1].Coordinate, out.Results[1].PURL)
	}
}

func TestResolveBatchRejects(t *testing.T) {
	ts := newTestServer(t, Options{})

	var big strings.Builder
	big.WriteString(`{"requests":[`)
	for i := range MaxBatch + 1 {
		if i > 0 {
			big.WriteByte(',')
		}
		big.WriteString(`{"coordinate":"g:a"}`)
	}
	big.WriteString(`]}`)

	for name, body := range map[string]string{
		"malformed":     `{"requests":`,
		"unknown field": `{"requests":[],"extra":1}`,
		"too large":     big.String(),
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/resolve", "application/json", strings.NewReader(body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestTranslateAndRelatives(t *testing.T) {
	g := depmap.NewGraph(nil)
	g.AddMapping(artifact.New("junit", "junit"), artifact.New("JPP", "junit4"), "")
	g.AddMapping(artifact.New("org.junit", "junit"), artifact.New("JPP", "junit4"), "")
	ts := newTestServer(t, Options{Graph: g})

	var tr TranslateResponse
	getJSON(t, ts.URL+"/v1/translate?coordinate=junit:junit:4.12", &tr)
	if len(tr.Coordinates) != 2 || tr.Coordinates[0] != "JPP:junit4:jar:SYSTEM" {
		t.Errorf("translate = %+v", tr)
	}

	var rel TranslateResponse
	getJSON(t, ts.URL+"/v1/relatives?coordinate=JPP:junit4", &rel)
	if len(rel.Coordinates) != 3 {
		t.Errorf("relatives = %+v", rel)
	}
}

func TestTranslateDisabledWithoutGraph(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := getJSON(t, ts.URL+"/v1/translate?coordinate=a:b", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := getJSON(t, ts.URL+"/healthz", nil)
	if id := resp.Header.Get(RequestIDHeader); len(id) != 36 {
		t.Errorf("generated id = %q", id)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if id := resp.Header.Get(RequestIDHeader); id != "abc" {
		t.Errorf("echoed id = %q, want abc", id)
	}
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sysresolve_up 1\n"))
	})
	ts := newTestServer(t, Options{Metrics: metrics})
	resp := getJSON(t, ts.URL+"/metrics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route)
	h.status = append(h.status, status)
}

func TestInstrumentReportsRoutePattern(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	h := New(Options{Resolver: stubResolver()}).Handler()
	for _, target := range []string{"/v1/resolve?coordinate=g:found", "/v1/resolve"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 2 || hooks.routes[0] != "/v1/resolve" {
		t.Errorf("routes = %v", hooks.routes)
	}
	if hooks.status[0] != http.StatusOK || hooks.status[1] != http.StatusBadRequest {
		t.Errorf("status = %v", hooks.status)
	}
}
