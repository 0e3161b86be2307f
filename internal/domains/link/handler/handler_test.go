package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"qrlink-backend/internal/domains/link"
	"qrlink-backend/internal/domains/link/mocks"
	"qrlink-backend/internal/domains/qrcode/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withUser(owner uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", owner)
		c.Next()
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestRedirectHandler(t *testing.T) {
	linkID := uuid.New()

	tests := []struct {
		name         string
		slug         string
		mockSetup    func(m *mocks.MockResolver)
		wantStatus   int
		wantLocation string
	}{
		{
			name: "hit redirects then records scan",
			slug: "abc123",
			mockSetup: func(m *mocks.MockResolver) {
				gomock.InOrder(
					m.EXPECT().Resolve(gomock.Any(), "abc123").Return(&link.Resolution{
						LinkID:        linkID,
						Destination:   "https://example.com",
						ObservedScans: 4,
					}, nil),
					m.EXPECT().RecordScan(gomock.Any(), linkID, int64(4)),
				)
			},
			wantStatus:   http.StatusFound,
			wantLocation: "https://example.com",
		},
		{
			name: "miss",
			slug: "nope",
			mockSetup: func(m *mocks.MockResolver) {
				m.EXPECT().Resolve(gomock.Any(), "nope").Return(nil, link.ErrLinkNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "store failure still looks like a miss",
			slug: "abc123",
			mockSetup: func(m *mocks.MockResolver) {
				m.EXPECT().Resolve(gomock.Any(), "abc123").
					Return(nil, fmt.Errorf("%w: connection refused", link.ErrStoreUnavailable))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			resolver := mocks.NewMockResolver(ctrl)
			tt.mockSetup(resolver)

			router := gin.New()
			router.GET("/r/:slug", NewRedirectHandler(resolver).Redirect)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/r/"+tt.slug, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			} else {
				assert.JSONEq(t, `{"error":"Link not found"}`, w.Body.String())
			}
		})
	}
}

func TestLinkHandler_Create(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name       string
		body       string
		mockSetup  func(m *mocks.MockService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			body: `{"destination":"https://example.com","slug":"promo"}`,
			mockSetup: func(m *mocks.MockService) {
				m.EXPECT().
					Create(gomock.Any(), owner, link.CreateLinkRequest{Destination: "https://example.com", Slug: "promo"}).
					Return(&link.LinkResponse{ID: uuid.New(), Slug: "promo"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"destination":`,
			mockSetup:  func(m *mocks.MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "slug taken",
			body: `{"destination":"https://example.com","slug":"promo"}`,
			mockSetup: func(m *mocks.MockService) {
				m.EXPECT().Create(gomock.Any(), owner, gomock.Any()).Return(nil, link.ErrSlugTaken)
			},
			wantStatus: http.StatusConflict,
			wantCode:   "SLUG_TAKEN",
		},
		{
			name: "invalid destination",
			body: `{"destination":"ftp://example.com"}`,
			mockSetup: func(m *mocks.MockService) {
				m.EXPECT().Create(gomock.Any(), owner, gomock.Any()).
					Return(nil, fmt.Errorf("%w: must use http or https", link.ErrInvalidDestination))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_URL",
		},
		{
			name: "store down",
			body: `{"destination":"https://example.com"}`,
			mockSetup: func(m *mocks.MockService) {
				m.EXPECT().Create(gomock.Any(), owner, gomock.Any()).
					Return(nil, fmt.Errorf("%w: %w", link.ErrStoreUnavailable, errors.New("dial tcp")))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "STORE_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockService(ctrl)
			tt.mockSetup(svc)

			router := gin.New()
			router.POST("/links", withUser(owner), NewLinkHandler(svc).Create)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/links", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
			}
		})
	}
}

func TestLinkHandler_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := gin.New()
	router.GET("/links/:id", withUser(uuid.New()), NewLinkHandler(mocks.NewMockService(ctrl)).Get)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/links/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinkHandler_NotOwner(t *testing.T) {
	owner, id := uuid.New(), uuid.New()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().Get(gomock.Any(), owner, id).Return(nil, link.ErrLinkNotFound)

	router := gin.New()
	router.GET("/links/:id", withUser(owner), NewLinkHandler(svc).Get)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/links/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "LINK_NOT_FOUND", errorCode(t, w))
}

func TestLinkHandler_SaveStyle(t *testing.T) {
	owner, id := uuid.New(), uuid.New()

	t.Run("gradient style saved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().
			SaveStyle(gomock.Any(), owner, id, gomock.Any()).
			DoAndReturn(func(_ interface{}, _, _ uuid.UUID, style model.Style) (*link.LinkResponse, error) {
				assert.Equal(t, model.Gradient{From: "#ff0000", To: "#0000ff"}, style.Color)
				return &link.LinkResponse{ID: id, Style: style}, nil
			})

		router := gin.New()
		router.PUT("/links/:id/style", withUser(owner), NewLinkHandler(svc).SaveStyle)

		body := `{"dots":"rounded","corners":"square","color":{"type":"linear","colors":["#ff0000","#0000ff"]},"errorCorrection":"H"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/links/"+id.String()+"/style", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("three gradient colors rejected before service", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)

		router := gin.New()
		router.PUT("/links/:id/style", withUser(owner), NewLinkHandler(svc).SaveStyle)

		body := `{"color":{"type":"linear","colors":["#ff0000","#00ff00","#0000ff"]}}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/links/"+id.String()+"/style", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "QR_INVALID_STYLE", errorCode(t, w))
	})
}

func TestLinkHandler_RenderQR(t *testing.T) {
	owner, id := uuid.New(), uuid.New()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().
		RenderQR(gomock.Any(), owner, id, link.QRRequest{Format: "png", Size: 512}).
		Return([]byte("\x89PNG"), "image/png", nil)
	svc.EXPECT().
		RenderQR(gomock.Any(), owner, id, link.QRRequest{Size: 5000}).
		Return(nil, "", model.ErrInvalidSize)

	router := gin.New()
	router.GET("/links/:id/qr", withUser(owner), NewLinkHandler(svc).RenderQR)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/links/"+id.String()+"/qr?format=png&size=512", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	// lỗi của qrcode domain vẫn map đúng qua link handler
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/links/"+id.String()+"/qr?size=5000", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "QR_INVALID_SIZE", errorCode(t, w))
}
