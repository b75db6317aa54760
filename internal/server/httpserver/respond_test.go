package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/moodjournal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenWriter records status codes and fails every body write.
type brokenWriter struct {
	header   http.Header
	statuses []int
}

func (w *brokenWriter) Header() http.Header {
	if w.header == nil {
		w.header = http.Header{}
	}
	return w.header
}

func (w *brokenWriter) WriteHeader(status int) { w.statuses = append(w.statuses, status) }

func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestRender_WriteFailureKeepsSingleStatus(t *testing.T) {
	s, err := NewServer(Deps{}, Options{}, logging.Nop{})
	require.NoError(t, err)

	w := &brokenWriter{}
	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	s.render(w, r, http.StatusOK, "login.html", s.page(nil))

	assert.Equal(t, []int{http.StatusOK}, w.statuses)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestRender_UnknownTemplate(t *testing.T) {
	s, err := NewServer(Deps{}, Options{}, logging.Nop{})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	s.render(w, r, http.StatusOK, "missing.html", s.page(nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Header().Get("Content-Type"), "text/html")
}
