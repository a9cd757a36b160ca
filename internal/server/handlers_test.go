package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/expomap/boothfinder/internal/geometry"
	"github.com/expomap/boothfinder/internal/pipeline"
	"github.com/expomap/boothfinder/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAnalyzer implements analyzerInterface with canned results.
type fakeAnalyzer struct {
	res      *pipeline.AnalysisResult
	err      error
	current  *pipeline.AnalysisResult
	searched []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ image.Image) (*pipeline.AnalysisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.current = f.res
	return f.res, nil
}

func (f *fakeAnalyzer) Search(query string) pipeline.SearchResult {
	f.searched = append(f.searched, query)
	if f.current == nil {
		return pipeline.SearchResult{Query: query}
	}
	sr := pipeline.SearchBooths(f.current.Booths, query)
	next := *f.current
	next.Booths = sr.Booths
	f.current = &next
	return sr
}

func (f *fakeAnalyzer) Current() *pipeline.AnalysisResult {
	return f.current
}

func testBooth(name string) pipeline.Booth {
	box := geometry.RectBox(10, 10, 100, 80)
	return pipeline.Booth{
		ID:          "booth-1",
		BoundingBox: box,
		Confidence:  0.9,
		Area:        box.Area(),
		BoothName:   name,
		DetectedText: name,
	}
}

func testResult() *pipeline.AnalysisResult {
	return &pipeline.AnalysisResult{
		Width:  640,
		Height: 480,
		Booths: []pipeline.Booth{testBooth("Acme")},
	}
}

func newTestServer(fa *fakeAnalyzer) *Server {
	return &Server{
		analyzer:       fa,
		corsOrigin:     "*",
		maxUploadMB:    10,
		timeoutSec:     5,
		overlayEnabled: true,
	}
}

// multipartImageRequest builds a POST with a PNG floor plan in field "image".
func multipartImageRequest(t *testing.T, target string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "plan.png")
	require.NoError(t, err)
	img := testutil.NewFloorPlan(64, 48).AddBooth(5, 5, 40, 30, "").Image()
	require.NoError(t, png.Encode(fw, img))
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})
	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})
	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyzeHandler(t *testing.T) {
	fa := &fakeAnalyzer{res: testResult()}
	s := newTestServer(fa)

	rec := httptest.NewRecorder()
	s.analyzeHandler(rec, multipartImageRequest(t, "/analyze", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Len(t, resp.Result.Booths, 1)
	assert.NotNil(t, s.getLastImage())
}

func TestAnalyzeHandlerWithInitialQuery(t *testing.T) {
	fa := &fakeAnalyzer{res: testResult()}
	s := newTestServer(fa)

	rec := httptest.NewRecorder()
	s.analyzeHandler(rec, multipartImageRequest(t, "/analyze", map[string]string{"query": "acme"}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"acme"}, fa.searched)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	require.Len(t, resp.Result.Booths, 1)
	assert.True(t, resp.Result.Booths[0].Highlighted)
}

func TestAnalyzeHandlerCSVFormat(t *testing.T) {
	fa := &fakeAnalyzer{res: testResult()}
	s := newTestServer(fa)

	rec := httptest.NewRecorder()
	s.analyzeHandler(rec, multipartImageRequest(t, "/analyze", map[string]string{"format": "csv"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "id,name,text,"))
}

func TestAnalyzeHandlerNoFile(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{res: testResult()})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	s.analyzeHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandlerInvalidImage(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{res: testResult()})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "plan.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not a png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	s.analyzeHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandlerPipelineError(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{err: errors.New("detector crashed")})

	rec := httptest.NewRecorder()
	s.analyzeHandler(rec, multipartImageRequest(t, "/analyze", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "detector crashed")
}

func TestBoothsHandlerBeforeAnalysis(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})
	rec := httptest.NewRecorder()
	s.boothsHandler(rec, httptest.NewRequest(http.MethodGet, "/booths", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBoothsHandler(t *testing.T) {
	fa := &fakeAnalyzer{res: testResult()}
	fa.current = fa.res
	s := newTestServer(fa)

	rec := httptest.NewRecorder()
	s.boothsHandler(rec, httptest.NewRequest(http.MethodGet, "/booths", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.Equal(t, 640, resp.Result.Width)
}

func TestSearchHandler(t *testing.T) {
	fa := &fakeAnalyzer{res: testResult()}
	fa.current = fa.res
	s := newTestServer(fa)

	rec := httptest.NewRecorder()
	s.searchHandler(rec, httptest.NewRequest(http.MethodGet, "/search?query=acme", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Found)
	assert.Equal(t, "booth-1", resp.Result.BoothID)
}

func TestSearchHandlerBeforeAnalysis(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})
	rec := httptest.NewRecorder()
	s.searchHandler(rec, httptest.NewRequest(http.MethodGet, "/search?query=acme", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOverlayHandler(t *testing.T) {
	fa := &fakeAnalyzer{res: testResult()}
	fa.current = fa.res
	s := newTestServer(fa)
	s.setLastImage(testutil.NewPlainImage(640, 480, color.White))

	rec := httptest.NewRecorder()
	s.overlayHandler(rec, httptest.NewRequest(http.MethodGet, "/overlay.png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
}

func TestOverlayHandlerDisabled(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})
	s.overlayEnabled = false

	rec := httptest.NewRecorder()
	s.overlayHandler(rec, httptest.NewRequest(http.MethodGet, "/overlay.png", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOverlayHandlerBeforeAnalysis(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})
	rec := httptest.NewRecorder()
	s.overlayHandler(rec, httptest.NewRequest(http.MethodGet, "/overlay.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})
	handler := s.corsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodOptions, "/analyze", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestSetupRoutes(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{})
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
