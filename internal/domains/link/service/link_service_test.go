package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"qrlink-backend/internal/domains/link"
	"qrlink-backend/internal/domains/link/mocks"
	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/internal/shared/utils"
)

const testBaseURL = "https://qr.example.com"

type serviceDeps struct {
	repo     *mocks.MockRepository
	renderer *mocks.MockQRRenderer
	logos    *mocks.MockLogoRemover
	svc      link.Service
}

func newTestService(t *testing.T) serviceDeps {
	ctrl := gomock.NewController(t)
	d := serviceDeps{
		repo:     mocks.NewMockRepository(ctrl),
		renderer: mocks.NewMockQRRenderer(ctrl),
		logos:    mocks.NewMockLogoRemover(ctrl),
	}
	d.svc = NewLinkService(d.repo, d.renderer, d.logos, testBaseURL)
	return d
}

func TestLinkService_Create(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name        string
		req         link.CreateLinkRequest
		mockSetup   func(d serviceDeps)
		wantSlug    string
		expectedErr error
	}{
		{
			name: "custom slug is normalized",
			req:  link.CreateLinkRequest{Destination: "https://example.com", Slug: "  My Promo "},
			mockSetup: func(d serviceDeps) {
				d.repo.EXPECT().SlugExists(gomock.Any(), "my-promo").Return(false, nil)
				d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantSlug: "my-promo",
		},
		{
			name: "custom slug already taken",
			req:  link.CreateLinkRequest{Destination: "https://example.com", Slug: "taken"},
			mockSetup: func(d serviceDeps) {
				d.repo.EXPECT().SlugExists(gomock.Any(), "taken").Return(true, nil)
			},
			expectedErr: link.ErrSlugTaken,
		},
		{
			name: "insert race surfaces as conflict",
			req:  link.CreateLinkRequest{Destination: "https://example.com", Slug: "racy"},
			mockSetup: func(d serviceDeps) {
				d.repo.EXPECT().SlugExists(gomock.Any(), "racy").Return(false, nil)
				d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(link.ErrSlugTaken)
			},
			expectedErr: link.ErrSlugTaken,
		},
		{
			name:        "slug too short after normalization",
			req:         link.CreateLinkRequest{Destination: "https://example.com", Slug: "a!"},
			mockSetup:   func(d serviceDeps) {},
			expectedErr: link.ErrInvalidSlug,
		},
		{
			name:        "invalid destination",
			req:         link.CreateLinkRequest{Destination: "not-a-url", Slug: "valid"},
			mockSetup:   func(d serviceDeps) {},
			expectedErr: link.ErrInvalidDestination,
		},
		{
			name:        "non http destination",
			req:         link.CreateLinkRequest{Destination: "ftp://example.com/file", AutoGenerate: true},
			mockSetup:   func(d serviceDeps) {},
			expectedErr: link.ErrInvalidDestination,
		},
		{
			name: "store failure is propagated",
			req:  link.CreateLinkRequest{Destination: "https://example.com", Slug: "valid"},
			mockSetup: func(d serviceDeps) {
				d.repo.EXPECT().SlugExists(gomock.Any(), "valid").Return(false, link.ErrStoreUnavailable)
			},
			expectedErr: link.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestService(t)
			tt.mockSetup(d)

			got, err := d.svc.Create(context.Background(), owner, tt.req)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSlug, got.Slug)
			assert.Equal(t, testBaseURL+"/r/"+tt.wantSlug, got.RedirectURL)
			assert.Equal(t, int64(0), got.ScanCount)
			assert.Equal(t, model.Default(), got.Style)
		})
	}
}

func TestLinkService_Create_GeneratedSlugRetriesOnCollision(t *testing.T) {
	d := newTestService(t)
	owner := uuid.New()

	gomock.InOrder(
		d.repo.EXPECT().SlugExists(gomock.Any(), gomock.Any()).Return(true, nil),
		d.repo.EXPECT().SlugExists(gomock.Any(), gomock.Any()).Return(false, nil),
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(link.ErrSlugTaken),
		d.repo.EXPECT().SlugExists(gomock.Any(), gomock.Any()).Return(false, nil),
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, l *link.Link) error {
				assert.Equal(t, owner, l.OwnerID)
				assert.Equal(t, "https://example.com", l.Destination)
				return nil
			}),
	)

	got, err := d.svc.Create(context.Background(), owner, link.CreateLinkRequest{
		Destination:  "https://example.com",
		Slug:         "ignored-when-auto",
		AutoGenerate: true,
	})
	require.NoError(t, err)
	assert.Len(t, got.Slug, utils.DefaultSlugLength)
	assert.True(t, utils.ValidateSlug(got.Slug))
}

func TestLinkService_Create_GeneratedSlugGivesUp(t *testing.T) {
	d := newTestService(t)

	d.repo.EXPECT().SlugExists(gomock.Any(), gomock.Any()).Return(true, nil).Times(maxSlugAttempts)

	_, err := d.svc.Create(context.Background(), uuid.New(), link.CreateLinkRequest{Destination: "https://example.com"})
	assert.ErrorIs(t, err, link.ErrSlugGenerationFailed)
}

func TestLinkService_UpdateDestination(t *testing.T) {
	d := newTestService(t)
	owner, id := uuid.New(), uuid.New()

	d.repo.EXPECT().
		UpdateDestination(gomock.Any(), id, owner, "https://new.example.com").
		Return(&link.Link{ID: id, OwnerID: owner, Slug: "promo", Destination: "https://new.example.com", ScanCount: 4}, nil)

	got, err := d.svc.UpdateDestination(context.Background(), owner, id, link.UpdateDestinationRequest{Destination: " https://new.example.com "})
	require.NoError(t, err)
	assert.Equal(t, "promo", got.Slug)
	assert.Equal(t, int64(4), got.ScanCount)

	_, err = d.svc.UpdateDestination(context.Background(), owner, id, link.UpdateDestinationRequest{Destination: ""})
	assert.ErrorIs(t, err, link.ErrInvalidDestination)
}

func TestLinkService_Delete(t *testing.T) {
	owner, id := uuid.New(), uuid.New()
	logo := "https://cdn.example.com/qr-logos/" + owner.String() + "/1.png"

	t.Run("removes unused logo", func(t *testing.T) {
		d := newTestService(t)
		d.repo.EXPECT().FindByIDAndOwner(gomock.Any(), id, owner).
			Return(&link.Link{ID: id, Slug: "x", Style: model.Default().WithLogo(logo, model.LogoCircle)}, nil)
		d.repo.EXPECT().Delete(gomock.Any(), id, owner).Return(nil)
		d.repo.EXPECT().ListLogoRefs(gomock.Any()).Return([]string{}, nil)
		d.logos.EXPECT().Delete(gomock.Any(), owner, logo).Return(nil)

		require.NoError(t, d.svc.Delete(context.Background(), owner, id))
	})

	t.Run("keeps logo still referenced", func(t *testing.T) {
		d := newTestService(t)
		d.repo.EXPECT().FindByIDAndOwner(gomock.Any(), id, owner).
			Return(&link.Link{ID: id, Slug: "x", Style: model.Default().WithLogo(logo, model.LogoSquare)}, nil)
		d.repo.EXPECT().Delete(gomock.Any(), id, owner).Return(nil)
		d.repo.EXPECT().ListLogoRefs(gomock.Any()).Return([]string{logo}, nil)

		require.NoError(t, d.svc.Delete(context.Background(), owner, id))
	})

	t.Run("logo failure does not fail delete", func(t *testing.T) {
		d := newTestService(t)
		d.repo.EXPECT().FindByIDAndOwner(gomock.Any(), id, owner).
			Return(&link.Link{ID: id, Slug: "x", Style: model.Default().WithLogo(logo, model.LogoSquare)}, nil)
		d.repo.EXPECT().Delete(gomock.Any(), id, owner).Return(nil)
		d.repo.EXPECT().ListLogoRefs(gomock.Any()).Return(nil, nil)
		d.logos.EXPECT().Delete(gomock.Any(), owner, logo).Return(errors.New("minio down"))

		require.NoError(t, d.svc.Delete(context.Background(), owner, id))
	})

	t.Run("not found", func(t *testing.T) {
		d := newTestService(t)
		d.repo.EXPECT().FindByIDAndOwner(gomock.Any(), id, owner).Return(nil, link.ErrLinkNotFound)

		assert.ErrorIs(t, d.svc.Delete(context.Background(), owner, id), link.ErrLinkNotFound)
	})
}

func TestLinkService_SaveStyle(t *testing.T) {
	owner, id := uuid.New(), uuid.New()

	t.Run("normalizes before saving", func(t *testing.T) {
		d := newTestService(t)
		input := model.Default().WithGradient("#ff0000", "#00ff00")
		input.LogoShape = model.LogoCircle // không có logo => bị bỏ
		input.ErrorCorrection = ""

		expected := model.Default().WithGradient("#ff0000", "#00ff00")
		d.repo.EXPECT().UpdateStyle(gomock.Any(), id, owner, expected).
			Return(&link.Link{ID: id, Slug: "s1", Style: expected}, nil)

		got, err := d.svc.SaveStyle(context.Background(), owner, id, input)
		require.NoError(t, err)
		assert.Equal(t, expected, got.Style)
	})

	t.Run("invalid style never reaches store", func(t *testing.T) {
		d := newTestService(t)
		bad := model.Default()
		bad.Dots = "hearts"

		_, err := d.svc.SaveStyle(context.Background(), owner, id, bad)
		assert.ErrorIs(t, err, model.ErrInvalidStyle)
		assert.Equal(t, 400, link.GetHTTPStatusCode(err))
	})
}

func TestLinkService_RenderQRUsesRedirectURL(t *testing.T) {
	d := newTestService(t)
	owner, id := uuid.New(), uuid.New()
	style := model.Default().WithSolidColor("#112233")

	d.repo.EXPECT().FindByIDAndOwner(gomock.Any(), id, owner).
		Return(&link.Link{ID: id, Slug: "abc123", Destination: "https://dest.example.com", Style: style}, nil)
	d.renderer.EXPECT().Render(gomock.Any(), style, testBaseURL+"/r/abc123", "png", 300).
		Return([]byte("png-bytes"), "image/png", nil)

	data, contentType, err := d.svc.RenderQR(context.Background(), owner, id, link.QRRequest{Format: "png", Size: 300})
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "image/png", contentType)
}

func TestLinkService_Export(t *testing.T) {
	d := newTestService(t)
	owner := uuid.New()

	d.repo.EXPECT().ListByOwner(gomock.Any(), owner).Return([]link.Link{
		{ID: uuid.New(), Slug: "one", Destination: "https://one.example.com", Style: model.Default(), ScanCount: 3},
		{ID: uuid.New(), Slug: "two", Destination: "https://two.example.com", Style: model.Default()},
	}, nil)

	data, err := d.svc.Export(context.Background(), owner)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "one", rows[1][1])
	assert.Equal(t, testBaseURL+"/r/one", rows[1][2])
	assert.Equal(t, "3", rows[1][4])
}
