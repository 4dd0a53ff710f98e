package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher() *Fetcher {
	return New(Config{RateLimit: 1000, MinContentLength: 20})
}

func TestFetchExtractsTitleAndText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>  Widget Docs  </title></head>
			<body>
				<nav>Home About Contact</nav>
				<script>var tracking = true;</script>
				<style>.x { color: red }</style>
				<p>Widgets   are assembled
				from    sprockets.</p>
				<footer>Copyright</footer>
			</body></html>`)
	}))
	defer srv.Close()

	page, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Widget Docs", page.Title)
	assert.Equal(t, "Widgets are assembled from sprockets.", page.Text)
	assert.NotContains(t, page.Text, "tracking")
	assert.NotContains(t, page.Text, "Home About")
	assert.NotContains(t, page.Text, "Copyright")
	assert.NotEmpty(t, page.Raw)
}

func TestFetchTitleFallsBackToURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>"+strings.Repeat("words ", 20)+"</p></body></html>")
	}))
	defer srv.Close()

	page, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, page.Title)
}

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>"+strings.Repeat("words ", 20)+"</p></body></html>")
	}))
	defer srv.Close()

	_, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, gotUA, "ragengine")
}

func TestFetchRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer srv.Close()

	_, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content type")
}

func TestFetchRejectsThinPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>hi</p></body></html>")
	}))
	defer srv.Close()

	f := New(Config{RateLimit: 1000, MinContentLength: 100})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrEmptyContent)
}

func TestFetchHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testFetcher().Fetch(ctx, "http://localhost:1")
	require.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	f := New(Config{})
	assert.Equal(t, 100, f.cfg.MinContentLength)
	assert.Equal(t, float64(2), f.cfg.RateLimit)
	assert.NotEmpty(t, f.cfg.UserAgent)
}
