package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrlink-backend/internal/config"
	"qrlink-backend/pkg/container"
	"qrlink-backend/pkg/logger"
)

const testBaseURL = "https://qr.example.com"

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

type testApp struct {
	t      *testing.T
	c      *container.Container
	router *gin.Engine
	token  string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{
			Name:          "QR Link API",
			Environment:   "test",
			Version:       "test",
			PublicBaseURL: testBaseURL,
			CORSOrigins:   []string{"*"},
		},
		Store: config.StoreConfig{Driver: config.StoreDriverSQLite, SQLitePath: ":memory:"},
		JWT:   config.JWTConfig{Secret: "test-secret"},
		MinIO: config.MinIOConfig{Bucket: "qr-logos", Enabled: false},
		Scan:  config.ScanConfig{Mode: config.ScanModeDirect},
	}

	c, err := container.NewContainerWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)

	token, err := c.JWTManager.GenerateAccessToken(uuid.NewString(), time.Hour)
	require.NoError(t, err)

	return &testApp{t: t, c: c, router: SetupRouter(c), token: token}
}

func (a *testApp) do(method, path string, body []byte, contentType string, auth bool) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) doJSON(method, path string, payload interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(a.t, err)
	}
	return a.do(method, path, body, "application/json", true)
}

func (a *testApp) drain() {
	a.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(a.t, a.c.Resolver.Drain(ctx))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type linkBody struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Destination string `json:"original_url"`
	RedirectURL string `json:"redirect_url"`
	ScanCount   int64  `json:"scan_count"`
}

func decodeLink(t *testing.T, w *httptest.ResponseRecorder) linkBody {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var l linkBody
	require.NoError(t, json.Unmarshal(env.Data, &l))
	return l
}

func TestRedirectLifecycle(t *testing.T) {
	app := newTestApp(t)

	// 1. tạo link với custom slug
	w := app.doJSON(http.MethodPost, "/api/v1/links", map[string]interface{}{
		"destination": "https://example.com",
		"slug":        "abc123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeLink(t, w)
	assert.Equal(t, "abc123", created.Slug)
	assert.Equal(t, testBaseURL+"/r/abc123", created.RedirectURL)

	// 2. scan => 302 và scan_count tăng sau khi drain
	w = app.do(http.MethodGet, "/r/abc123", nil, "", false)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Location"))
	app.drain()

	w = app.doJSON(http.MethodGet, "/api/v1/links/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeLink(t, w).ScanCount)

	// 3. slug không tồn tại => 404 JSON cố định
	w = app.do(http.MethodGet, "/r/unknown", nil, "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Link not found"}`, w.Body.String())

	// 4. slug trùng => 409
	w = app.doJSON(http.MethodPost, "/api/v1/links", map[string]interface{}{
		"destination": "https://other.example.com",
		"slug":        "abc123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 5. đổi destination, QR cũ vẫn dẫn tới đích mới
	w = app.doJSON(http.MethodPatch, "/api/v1/links/"+created.ID, map[string]interface{}{
		"destination": "https://new.example.com/landing",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(http.MethodGet, "/r/abc123", nil, "", false)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://new.example.com/landing", w.Header().Get("Location"))
	app.drain()

	// 6. xoá => redirect 404
	w = app.doJSON(http.MethodDelete, "/api/v1/links/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/r/abc123", nil, "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConcurrentRedirectsCountEveryScan(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/api/v1/links", map[string]interface{}{
		"destination": "https://example.com",
		"slug":        "abc123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeLink(t, w).ID

	const scans = 200
	statuses := make([]int, scans)
	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/r/abc123", nil))
			statuses[i] = rec.Code
		}(i)
	}
	wg.Wait()
	app.drain()

	for i, code := range statuses {
		require.Equal(t, http.StatusFound, code, "request %d", i)
	}

	// increment tương đối nên không mất scan nào
	w = app.doJSON(http.MethodGet, "/api/v1/links/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(scans), decodeLink(t, w).ScanCount)
}

func TestDashboardRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/v1/links", nil, "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// redirect là public
	w = app.do(http.MethodGet, "/r/whatever", nil, "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/v1/health", nil, "", false)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	services := body["services"].(map[string]interface{})
	assert.Equal(t, "ok", services["store"])
	assert.Equal(t, "disabled", services["redis"])
}

func testLogoPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 220, G: 20, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStyledQRWithLogo(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/api/v1/links", map[string]interface{}{
		"destination": "https://example.com",
		"slug":        "styled",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeLink(t, w).ID

	// upload logo
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="logo.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(testLogoPNG(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w = app.do(http.MethodPost, "/api/v1/logos", buf.Bytes(), mw.FormDataContentType(), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var logo struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &logo))
	require.NotEmpty(t, logo.URL)

	// lưu style có gradient + logo tròn
	w = app.doJSON(http.MethodPut, "/api/v1/links/"+id+"/style", map[string]interface{}{
		"dots":            "rounded",
		"corners":         "extra-rounded",
		"color":           map[string]interface{}{"type": "linear", "colors": []string{"#ff0000", "#0000ff"}},
		"logo":            logo.URL,
		"logoShape":       "circle",
		"errorCorrection": "H",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// SVG: gradient defs + clip-path cho logo
	w = app.do(http.MethodGet, "/api/v1/links/"+id+"/qr?format=svg&size=300", nil, "", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	svg := w.Body.String()
	assert.Contains(t, svg, "linearGradient")
	assert.Contains(t, svg, "url(#logo-clip)")
	assert.Contains(t, svg, logo.URL)

	// PNG decode được và đúng kích thước
	w = app.do(http.MethodGet, "/api/v1/links/"+id+"/qr?format=png&size=300", nil, "", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())

	// size ngoài khoảng => 400
	w = app.do(http.MethodGet, "/api/v1/links/"+id+"/qr?size=50", nil, "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewAndExport(t *testing.T) {
	app := newTestApp(t)

	w := app.doJSON(http.MethodPost, "/api/v1/qr/preview?format=svg", map[string]interface{}{
		"style": map[string]interface{}{"dots": "classy", "color": "#123456"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "<svg")

	w = app.doJSON(http.MethodPost, "/api/v1/links", map[string]interface{}{
		"destination":   "https://example.com",
		"auto_generate": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(http.MethodGet, "/api/v1/links/export", nil, "", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "links.xlsx")
	// xlsx là file zip
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}
