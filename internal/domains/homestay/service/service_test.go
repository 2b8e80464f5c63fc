package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"homestay/config"
	"homestay/infras/otel/mocks"
	"homestay/infras/s3"
	s3Mocks "homestay/infras/s3/mocks"
	homestayMocks "homestay/internal/domains/homestay/mocks"
	"homestay/internal/domains/homestay/model"
	"homestay/internal/domains/homestay/model/dto"
	"homestay/internal/domains/homestay/service"
	"homestay/shared"
	cacheMocks "homestay/shared/cache/mocks"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
)

const imageURL = "https://cdn.example.com/homestay/h1/a.png"

type fixture struct {
	repo    *homestayMocks.MockHomestay
	cache   *cacheMocks.MockRedisCache
	storage *s3Mocks.MockStorage
	svc     service.Homestay
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:    homestayMocks.NewMockHomestay(ctrl),
		cache:   cacheMocks.NewMockRedisCache(ctrl),
		storage: s3Mocks.NewMockStorage(ctrl),
	}
	f.svc = service.New(f.repo, &config.Config{}, f.cache, mocks.NewOtel(), f.storage)

	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

func ownerCtx() context.Context {
	return shared.WithUser(context.Background(), "owner-1", "owner@example.com", constant.RoleOwner)
}

func TestHomestayService_Create(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, h model.Homestay) error {
			assert.Equal(t, "owner-1", h.OwnerID)
			assert.True(t, h.Active)
			assert.NotEmpty(t, h.ID)

			return nil
		})

	res, err := f.svc.Create(ownerCtx(), dto.CreateHomestayRequest{
		Name: "Riverside", Address: "1 Bach Dang", City: "Hoi An", PricePerNight: 500000, MaxGuests: 4,
	})

	assert.NoError(t, err)
	assert.Equal(t, "500.000 ₫", res.PriceLabel)
	assert.Empty(t, res.Images)

	time.Sleep(10 * time.Millisecond)
}

func TestHomestayService_GetAll(t *testing.T) {
	f := newFixture(t)
	params := gDto.QueryParams{Page: 1, Limit: 10}

	t.Run("cache hit", func(t *testing.T) {
		f.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, key string, value any) error {
				assert.True(t, strings.HasPrefix(key, "homestay:gets:"))
				value.(*dto.GetHomestaysResponse).TotalData = 7

				return nil
			})

		res, err := f.svc.GetAll(context.Background(), params, dto.SearchRequest{City: "Da Lat"})
		assert.NoError(t, err)
		assert.Equal(t, 7, res.TotalData)
	})

	t.Run("cache miss", func(t *testing.T) {
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
		f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.Homestay{{ID: "h1", PricePerNight: 1}}, nil)

		res, err := f.svc.GetAll(context.Background(), params, dto.SearchRequest{})
		assert.NoError(t, err)
		assert.Len(t, res.Homestays, 1)

		time.Sleep(10 * time.Millisecond)
	})
}

func TestHomestayService_Update(t *testing.T) {
	name := "Renamed"

	tests := []struct {
		name         string
		ctx          context.Context
		req          dto.UpdateHomestayRequest
		setupMock    func(f fixture)
		expectedCode int
	}{
		{
			name: "owner updates",
			ctx:  ownerCtx(),
			req:  dto.UpdateHomestayRequest{Name: &name},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Homestay{ID: "h1", OwnerID: "owner-1"}, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "admin updates foreign homestay",
			ctx:  shared.WithUser(context.Background(), "admin-1", "", constant.RoleAdmin),
			req:  dto.UpdateHomestayRequest{Name: &name},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Homestay{ID: "h1", OwnerID: "owner-1"}, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "other owner is rejected",
			ctx:  shared.WithUser(context.Background(), "owner-2", "", constant.RoleOwner),
			req:  dto.UpdateHomestayRequest{Name: &name},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Homestay{ID: "h1", OwnerID: "owner-1"}, nil)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "empty request",
			ctx:          ownerCtx(),
			setupMock:    func(fixture) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "missing homestay",
			ctx:  ownerCtx(),
			req:  dto.UpdateHomestayRequest{Name: &name},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Homestay{}, nil)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Update(tt.ctx, tt.req, "h1")
			if tt.expectedCode == 0 {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.expectedCode, failure.GetCode(err))
			}

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestHomestayService_Delete(t *testing.T) {
	t.Run("removes images after delete", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(model.Homestay{ID: "h1", OwnerID: "owner-1", Images: pq.StringArray{imageURL}}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
		f.storage.EXPECT().DeleteByURL(gomock.Any(), imageURL).Return(nil)

		assert.NoError(t, f.svc.Delete(ownerCtx(), "h1"))

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("referenced by bookings", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Homestay{ID: "h1", OwnerID: "owner-1"}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).
			Return(&pq.Error{Code: constant.PqErrorCodeFkViolation})

		err := f.svc.Delete(ownerCtx(), "h1")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestHomestayService_UploadImage(t *testing.T) {
	req := dto.UploadImageRequest{
		Image: &multipart.FileHeader{
			Filename: "Front.PNG",
			Header:   textproto.MIMEHeader{constant.RequestHeaderContentType: {"image/png"}},
		},
	}

	t.Run("appends uploaded url", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(model.Homestay{ID: "h1", OwnerID: "owner-1", Images: pq.StringArray{"old"}}, nil)
		f.storage.EXPECT().
			Upload(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, object s3.Object) (string, error) {
				assert.Equal(t, "homestay/h1", object.Directory)
				assert.True(t, strings.HasSuffix(object.FileName, ".png"))
				assert.Equal(t, "image/png", object.ContentType)

				return imageURL, nil
			})
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, pq.StringArray{"old", imageURL}, fields[model.FieldImages])

				return nil
			})

		res, err := f.svc.UploadImage(ownerCtx(), req, "h1")
		assert.NoError(t, err)
		assert.Equal(t, imageURL, res.URL)
		assert.Equal(t, []string{"old", imageURL}, res.Images)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("failed update removes orphan object", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Homestay{ID: "h1", OwnerID: "owner-1"}, nil)
		f.storage.EXPECT().Upload(gomock.Any(), gomock.Any()).Return(imageURL, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))
		f.storage.EXPECT().DeleteByURL(gomock.Any(), imageURL).Return(nil)

		_, err := f.svc.UploadImage(ownerCtx(), req, "h1")
		assert.Error(t, err)
	})
}

func TestHomestayService_RemoveImage(t *testing.T) {
	t.Run("unknown url", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Homestay{ID: "h1", OwnerID: "owner-1"}, nil)

		err := f.svc.RemoveImage(ownerCtx(), dto.RemoveImageRequest{URL: imageURL}, "h1")
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("removes url and object", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(model.Homestay{ID: "h1", OwnerID: "owner-1", Images: pq.StringArray{imageURL, "b"}}, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, pq.StringArray{"b"}, fields[model.FieldImages])

				return nil
			})
		f.storage.EXPECT().DeleteByURL(gomock.Any(), imageURL).Return(nil)

		assert.NoError(t, f.svc.RemoveImage(ownerCtx(), dto.RemoveImageRequest{URL: imageURL}, "h1"))

		time.Sleep(10 * time.Millisecond)
	})
}
