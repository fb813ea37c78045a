package routers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/internal/dao"
	"github.com/haierkeys/idea-inbox-service/internal/domain"
	"github.com/haierkeys/idea-inbox-service/internal/service"
	"github.com/haierkeys/idea-inbox-service/pkg/archive"
	"github.com/haierkeys/idea-inbox-service/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubExtractor returns a fixed result or fails when err is set
type stubExtractor struct {
	result domain.ExtractionResult
	err    error
}

func (s stubExtractor) Extract(context.Context, string) (domain.ExtractionResult, error) {
	return s.result, s.err
}

type errorBody struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
	TraceID string   `json:"traceId"`
}

func newTestRouter(t *testing.T, ex service.Extractor, tweak func(*app.AppConfig)) (*gin.Engine, *app.App) {
	t.Helper()

	cfg, err := app.ParseConfig(nil)
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "inbox.sqlite3")
	if tweak != nil {
		tweak(cfg)
	}

	db, err := dao.NewDBEngine(cfg.GetDatabaseConfig())
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db, app.WithExtractor(ex))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	return NewRouter(a, ut.New(en.New(), en.New())), a
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeNote(t *testing.T, w *httptest.ResponseRecorder) service.NoteDTO {
	t.Helper()
	var n service.NoteDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &n))
	return n
}

func TestCapture_EnrichesNote(t *testing.T) {
	r, _ := newTestRouter(t, stubExtractor{result: domain.ExtractionResult{Title: "Groceries", Tags: []string{"errand"}}}, nil)

	w := doJSON(r, http.MethodPost, "/api/notes/capture", `{"content":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	n := decodeNote(t, w)
	assert.Equal(t, "Buy milk", n.Content)
	require.NotNil(t, n.Title)
	assert.Equal(t, "Groceries", *n.Title)
	assert.Equal(t, []string{"errand"}, n.Tags)
	assert.NotEmpty(t, n.CreatedAt)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestCapture_FallsBackWhenExtractionFails(t *testing.T) {
	r, _ := newTestRouter(t, stubExtractor{err: domain.ErrExtractionFailure}, nil)

	w := doJSON(r, http.MethodPost, "/api/notes/capture", `{"content":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	assert.JSONEq(t, `null`, mustField(t, w.Body.Bytes(), "title"))
	assert.JSONEq(t, `[]`, mustField(t, w.Body.Bytes(), "tags"))
}

func mustField(t *testing.T, body []byte, key string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	raw, ok := m[key]
	require.True(t, ok, "missing field %s", key)
	return string(raw)
}

func TestCapture_InvalidParams(t *testing.T) {
	r, _ := newTestRouter(t, stubExtractor{}, nil)

	w := doJSON(r, http.MethodPost, "/api/notes/capture", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, code.ErrorInvalidParams.Code(), body.Code)
	assert.NotEmpty(t, body.Details)
	assert.NotEmpty(t, body.TraceID)

	w = doJSON(r, http.MethodPost, "/api/notes/capture", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, code.ErrorNoteContentEmpty.Code(), body.Code)
}

func TestCapture_RateLimited(t *testing.T) {
	r, _ := newTestRouter(t, stubExtractor{}, func(cfg *app.AppConfig) {
		cfg.App.CaptureRateCapacity = 1
		cfg.App.CaptureRateInterval = "1h"
	})

	w := doJSON(r, http.MethodPost, "/api/notes/capture", `{"content":"one"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/notes/capture", `{"content":"two"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// other routes keep working
	w = doJSON(r, http.MethodPost, "/api/notes", `{"content":"three"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestNotes_CreateListDelete(t *testing.T) {
	r, _ := newTestRouter(t, stubExtractor{}, nil)

	w := doJSON(r, http.MethodPost, "/api/notes", `{"content":"first","title":"Idea","tags":["a","b"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	first := decodeNote(t, w)

	w = doJSON(r, http.MethodPost, "/api/notes", `{"content":"second"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	second := decodeNote(t, w)
	assert.Nil(t, second.Title)
	assert.Equal(t, []string{}, second.Tags)

	w = doJSON(r, http.MethodGet, "/api/notes", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []service.NoteDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, []string{"a", "b"}, list[1].Tags)

	w = doJSON(r, http.MethodDelete, "/api/notes/"+itoa(first.ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	// idempotent
	w = doJSON(r, http.MethodDelete, "/api/notes/"+itoa(first.ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/notes", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodGet, "/api/notes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestNotes_DeleteInvalidID(t *testing.T) {
	r, _ := newTestRouter(t, stubExtractor{}, nil)

	w := doJSON(r, http.MethodDelete, "/api/notes/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/notes/0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotes_Export(t *testing.T) {
	r, _ := newTestRouter(t, stubExtractor{}, nil)

	for _, body := range []string{
		`{"content":"one","title":"Idea","tags":["x"]}`,
		`{"content":"two","title":"Idea"}`,
	} {
		require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/notes", body).Code)
	}

	w := doJSON(r, http.MethodGet, "/api/notes/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="idea-inbox-export-`)

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)

		doc, err := archive.ParseDocument(string(data))
		require.NoError(t, err)
		assert.Equal(t, "Idea", doc.Title)
	}
	assert.Len(t, names, 2)
}

func TestNotes_ExportEmptyInbox(t *testing.T) {
	r, _ := newTestRouter(t, stubExtractor{}, nil)

	w := doJSON(r, http.MethodGet, "/api/notes/export", "")
	require.Equal(t, http.StatusOK, w.Code)

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}

func TestHealthAndVersion(t *testing.T) {
	r, a := newTestRouter(t, stubExtractor{}, nil)

	w := doJSON(r, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"healthy"`, mustField(t, w.Body.Bytes(), "status"))
	assert.JSONEq(t, `"connected"`, mustField(t, w.Body.Bytes(), "database"))

	w = doJSON(r, http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"`+a.Version().Version+`"`, mustField(t, w.Body.Bytes(), "version"))
	assert.JSONEq(t, `"`+app.Name+`"`, mustField(t, w.Body.Bytes(), "name"))
}

// checkedExtractor also answers health checks
type checkedExtractor struct {
	stubExtractor
	healthErr error
}

func (c checkedExtractor) HealthCheck(context.Context) error {
	return c.healthErr
}

func TestHealth_ExtractorReachable(t *testing.T) {
	r, _ := newTestRouter(t, checkedExtractor{}, nil)
	w := doJSON(r, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `true`, mustField(t, w.Body.Bytes(), "extractorReachable"))

	// 提取服务不可达时仍然健康，捕获会走降级路径
	r, _ = newTestRouter(t, checkedExtractor{healthErr: errors.New("connection refused")}, nil)
	w = doJSON(r, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"healthy"`, mustField(t, w.Body.Bytes(), "status"))
	assert.JSONEq(t, `false`, mustField(t, w.Body.Bytes(), "extractorReachable"))

	// 未启用时不探活
	r, _ = newTestRouter(t, checkedExtractor{}, func(cfg *app.AppConfig) { cfg.Extractor.Enabled = false })
	w = doJSON(r, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body, "extractorReachable")
}

func TestHealth_DatabaseDown(t *testing.T) {
	r, a := newTestRouter(t, stubExtractor{}, nil)
	require.NoError(t, a.Close())

	w := doJSON(r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `"unhealthy"`, mustField(t, w.Body.Bytes(), "status"))
}

func TestNoRoute(t *testing.T) {
	r, _ := newTestRouter(t, stubExtractor{}, nil)

	w := doJSON(r, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, code.ErrorNotFoundAPI.Code(), body.Code)
}

func TestPrivateRouter(t *testing.T) {
	r := NewPrivateRouterWithLogger(gin.ReleaseMode, zap.NewNop())

	w := doJSON(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/debug/vars", "")
	require.Equal(t, http.StatusOK, w.Code)
	var vars map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vars))
	assert.Contains(t, vars, "memstats")

	w = doJSON(r, http.MethodGet, "/pprof/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	debug := NewPrivateRouterWithLogger(gin.DebugMode, zap.NewNop())
	w = doJSON(debug, http.MethodGet, "/pprof/", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
