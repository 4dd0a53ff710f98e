package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferlab/ragengine/internal/documents"
	"github.com/inferlab/ragengine/internal/retrieval"
)

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
func (nopLogger) Fatal(string, error, ...map[string]interface{}) {}

type fakeSubmitter struct {
	doc     *documents.Document
	message string
	err     error
	gotURL  string
}

func (f *fakeSubmitter) Submit(_ context.Context, url string) (*documents.Document, string, error) {
	f.gotURL = url
	return f.doc, f.message, f.err
}

type fakeReader struct {
	docs  map[string]*documents.Document
	list  []documents.Document
	total int64

	gotStatus string
	gotLimit  int
	gotOffset int
}

func (f *fakeReader) GetByID(_ context.Context, id string) (*documents.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	return doc, nil
}

func (f *fakeReader) List(_ context.Context, status string, limit, offset int) ([]documents.Document, int64, error) {
	f.gotStatus = status
	f.gotLimit = limit
	f.gotOffset = offset
	return f.list, f.total, nil
}

type fakeAnswerer struct {
	answer   *retrieval.Answer
	err      error
	gotTopK  int
	gotQuery string
}

func (f *fakeAnswerer) Answer(_ context.Context, question string, topK int) (*retrieval.Answer, error) {
	f.gotQuery = question
	f.gotTopK = topK
	return f.answer, f.err
}

type fakeSnapshots struct {
	enabled   bool
	snapshots map[string][]byte
}

func (f *fakeSnapshots) Enabled() bool { return f.enabled }

func (f *fakeSnapshots) GetSnapshot(_ context.Context, docID string) ([]byte, error) {
	raw, ok := f.snapshots[docID]
	if !ok {
		return nil, errors.New("no such object")
	}
	return raw, nil
}

func newTestServer(sub Submitter, reader DocumentReader, ans Answerer) *Server {
	return newTestServerWithSnapshots(sub, reader, ans, &fakeSnapshots{})
}

func newTestServerWithSnapshots(sub Submitter, reader DocumentReader, ans Answerer, snaps SnapshotReader) *Server {
	if sub == nil {
		sub = &fakeSubmitter{}
	}
	if reader == nil {
		reader = &fakeReader{docs: map[string]*documents.Document{}}
	}
	if ans == nil {
		ans = &fakeAnswerer{}
	}
	return NewServer(Config{}, sub, reader, ans, snaps, nopLogger{})
}

func doRequest(t *testing.T, server *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := doRequest(t, newTestServer(nil, nil, nil), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.NotEmpty(t, body["message"])
}

func TestIngestURLAccepted(t *testing.T) {
	sub := &fakeSubmitter{
		doc:     &documents.Document{ID: "doc-1", URL: "https://example.com/page", Status: documents.StatusPending},
		message: "URL submitted for processing",
	}
	server := newTestServer(sub, nil, nil)

	rec := doRequest(t, server, http.MethodPost, "/ingest-url", `{"url":"https://example.com/page"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "doc-1", body.JobID)
	assert.Equal(t, documents.StatusPending, body.Status)
	assert.Equal(t, "URL submitted for processing", body.Message)
	assert.Equal(t, "https://example.com/page", sub.gotURL)
}

func TestIngestURLValidation(t *testing.T) {
	server := newTestServer(nil, nil, nil)

	for name, body := range map[string]string{
		"garbage body":   "{",
		"missing url":    `{}`,
		"bad scheme":     `{"url":"ftp://example.com/file"}`,
		"not a url":      `{"url":"definitely not"}`,
		"scheme no host": `{"url":"https://"}`,
	} {
		rec := doRequest(t, server, http.MethodPost, "/ingest-url", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestIngestURLSubmitterFailure(t *testing.T) {
	server := newTestServer(&fakeSubmitter{err: errors.New("db down")}, nil, nil)

	rec := doRequest(t, server, http.MethodPost, "/ingest-url", `{"url":"https://example.com/x"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusFound(t *testing.T) {
	reader := &fakeReader{docs: map[string]*documents.Document{
		"doc-1": {ID: "doc-1", URL: "https://example.com/a", Status: documents.StatusCompleted, ChunkCount: 12},
	}}
	server := newTestServer(nil, reader, nil)

	rec := doRequest(t, server, http.MethodGet, "/status/doc-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc documents.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, documents.StatusCompleted, doc.Status)
	assert.Equal(t, 12, doc.ChunkCount)
}

func TestStatusNotFound(t *testing.T) {
	server := newTestServer(nil, nil, nil)

	rec := doRequest(t, server, http.MethodGet, "/status/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Document not found", body.Error)
}

func TestListDocuments(t *testing.T) {
	reader := &fakeReader{
		list: []documents.Document{
			{ID: "doc-1", Status: documents.StatusCompleted},
			{ID: "doc-2", Status: documents.StatusCompleted},
		},
		total: 7,
	}
	server := newTestServer(nil, reader, nil)

	rec := doRequest(t, server, http.MethodGet, "/documents?status=completed&limit=2&offset=4", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 7, body.Total)
	assert.Len(t, body.Documents, 2)

	assert.Equal(t, documents.StatusCompleted, reader.gotStatus)
	assert.Equal(t, 2, reader.gotLimit)
	assert.Equal(t, 4, reader.gotOffset)
}

func TestListDocumentsDefaultsAndValidation(t *testing.T) {
	reader := &fakeReader{}
	server := newTestServer(nil, reader, nil)

	rec := doRequest(t, server, http.MethodGet, "/documents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, reader.gotLimit)
	assert.Equal(t, 0, reader.gotOffset)

	rec = doRequest(t, server, http.MethodGet, "/documents?limit=5000&offset=-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, reader.gotLimit)
	assert.Equal(t, 0, reader.gotOffset)

	rec = doRequest(t, server, http.MethodGet, "/documents?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSnapshotServed(t *testing.T) {
	reader := &fakeReader{docs: map[string]*documents.Document{
		"doc-1": {ID: "doc-1", URL: "https://example.com/a", Status: documents.StatusCompleted},
	}}
	snaps := &fakeSnapshots{
		enabled:   true,
		snapshots: map[string][]byte{"doc-1": []byte("<html><body>archived</body></html>")},
	}
	server := newTestServerWithSnapshots(nil, reader, nil, snaps)

	rec := doRequest(t, server, http.MethodGet, "/documents/doc-1/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "archived")
}

func TestSnapshotNotFoundCases(t *testing.T) {
	reader := &fakeReader{docs: map[string]*documents.Document{
		"doc-1": {ID: "doc-1", URL: "https://example.com/a", Status: documents.StatusCompleted},
	}}

	t.Run("archive disabled", func(t *testing.T) {
		server := newTestServerWithSnapshots(nil, reader, nil, &fakeSnapshots{})
		rec := doRequest(t, server, http.MethodGet, "/documents/doc-1/snapshot", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown document", func(t *testing.T) {
		server := newTestServerWithSnapshots(nil, reader, nil, &fakeSnapshots{enabled: true})
		rec := doRequest(t, server, http.MethodGet, "/documents/missing/snapshot", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no snapshot stored", func(t *testing.T) {
		server := newTestServerWithSnapshots(nil, reader, nil, &fakeSnapshots{enabled: true})
		rec := doRequest(t, server, http.MethodGet, "/documents/doc-1/snapshot", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestQueryEndpoint(t *testing.T) {
	ans := &fakeAnswerer{answer: &retrieval.Answer{
		Answer: "Widgets are assembled from sprockets.",
		Sources: []retrieval.Source{
			{URL: "https://example.com/widgets", Title: "Widgets", ChunkText: "sprockets...", Score: 0.9},
		},
	}}
	server := newTestServer(nil, nil, ans)

	rec := doRequest(t, server, http.MethodPost, "/query", `{"question":"how are widgets made?","top_k":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "how are widgets made?", body.Question)
	assert.Equal(t, "Widgets are assembled from sprockets.", body.Answer)
	require.Len(t, body.Sources, 1)
	assert.Equal(t, float32(0.9), body.Sources[0].Score)

	assert.Equal(t, 3, ans.gotTopK)
}

func TestQueryValidation(t *testing.T) {
	server := newTestServer(nil, nil, nil)

	rec := doRequest(t, server, http.MethodPost, "/query", `{"question":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, server, http.MethodPost, "/query", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryEngineFailure(t *testing.T) {
	server := newTestServer(nil, nil, &fakeAnswerer{err: errors.New("llm down")})

	rec := doRequest(t, server, http.MethodPost, "/query", `{"question":"q"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
