package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/logging"
	"github.com/dmitrijs2005/moodjournal/internal/server/advice"
	"github.com/dmitrijs2005/moodjournal/internal/server/models"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/memory"
	"github.com/dmitrijs2005/moodjournal/internal/server/services"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type firstPicker struct{}

func (firstPicker) IntN(int) int { return 0 }

type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "echo", nil
}

type fakeExporter struct {
	url string
	err error
	got *models.Identity
}

func (f *fakeExporter) Export(ctx context.Context, id *models.Identity) (string, error) {
	f.got = id
	return f.url, f.err
}

type testEnv struct {
	server *httptest.Server
	repos  *memory.InMemoryRepositoryManager
	deps   Deps
}

// newTestEnv wires the real services over in-memory repositories. The
// sqlite handle only backs the transactions opened by the session service.
func newTestEnv(t *testing.T, tweak func(*Deps, *Options)) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repos := memory.NewInMemoryRepositoryManager()
	deps := Deps{
		Accounts:  services.NewAccountService(db, repos),
		Sessions:  services.NewSessionService(db, repos, "test-secret", time.Hour),
		Entries:   services.NewEntryService(db, repos),
		Advisor:   advice.NewKeywordAdvisor(firstPicker{}),
		Companion: advice.NewCompanion(echoGenerator{}, time.Second, logging.Nop{}),
	}
	opts := Options{ChartWindow: 7, LoginRate: 6000, LoginBurst: 1000}
	if tweak != nil {
		tweak(&deps, &opts)
	}

	srv, err := NewServer(deps, opts, logging.Nop{})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, repos: repos, deps: deps}
}

// client keeps cookies and does not follow redirects.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) postForm(t *testing.T, c *http.Client, path string, form url.Values, headers ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, c *http.Client, path string, headers ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) postJSON(t *testing.T, c *http.Client, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	return resp
}

// login registers username/pin and returns a client holding its session.
func (e *testEnv) login(t *testing.T, username, pin string) *http.Client {
	t.Helper()
	c := e.client(t)
	resp := e.postForm(t, c, "/register", url.Values{"username": {username}, "pin": {pin}})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = e.postForm(t, c, "/login", url.Values{"username": {username}, "pin": {pin}})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	return c
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

var errExport = errors.New("bucket unavailable")
