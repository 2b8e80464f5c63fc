package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"homestay/config"
	"homestay/infras/otel/mocks"
	userMocks "homestay/internal/domains/user/mocks"
	"homestay/internal/domains/user/model"
	"homestay/internal/domains/user/model/dto"
	"homestay/internal/domains/user/service"
	"homestay/shared"
	cacheMocks "homestay/shared/cache/mocks"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
)

func boolPtr(b bool) *bool {
	return &b
}

func stringPtr(s string) *string {
	return &s
}

func TestUserService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	svc := service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel())

	ctx := shared.WithUser(context.Background(), "admin-1", "admin@example.com", constant.RoleAdmin)

	t.Run("creates owner account", func(t *testing.T) {
		mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, user model.User) error {
				assert.Equal(t, constant.RoleOwner, user.Level)
				assert.Equal(t, "admin-1", user.CreatedBy)

				return nil
			})
		mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		err := svc.Create(ctx, dto.CreateUserRequest{Email: "host@example.com", Password: "password", Level: constant.RoleOwner})
		assert.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		err := svc.Create(ctx, dto.CreateUserRequest{Email: "host@example.com", Password: "password"})
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestUserService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	svc := service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel())

	params := gDto.QueryParams{Page: 1, Limit: 2}

	t.Run("cache miss reads repository", func(t *testing.T) {
		mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
		mockRepo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return([]model.User{{ID: "u1"}, {ID: "u2"}}, nil)
		mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		res, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{})

		assert.NoError(t, err)
		assert.Len(t, res.Users, 2)
		assert.Equal(t, 3, res.TotalData)
		assert.Equal(t, 2, res.TotalPage)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("count error", func(t *testing.T) {
		mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("db down"))

		_, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{})
		assert.Error(t, err)
	})
}

func TestUserService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	svc := service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel())

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	t.Run("found", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: "u1", Email: "guest@example.com"}, nil)

		res, err := svc.Get(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Equal(t, "guest@example.com", res.Email)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

		_, err := svc.Get(context.Background(), "missing")
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestUserService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	svc := service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel())

	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	ctx := shared.WithUser(context.Background(), "admin-1", "admin@example.com", constant.RoleAdmin)

	tests := []struct {
		name         string
		id           string
		req          dto.UpdateUserRequest
		setupMock    func()
		expectedCode int
	}{
		{
			name: "deactivates account",
			id:   "u1",
			req:  dto.UpdateUserRequest{Active: boolPtr(false)},
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				mockRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						active, ok := fields[model.FieldActive].(*bool)
						assert.True(t, ok)
						assert.False(t, *active)
						assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])

						return nil
					})
			},
		},
		{
			name:         "empty request",
			id:           "u1",
			req:          dto.UpdateUserRequest{},
			setupMock:    func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "admin cannot deactivate self",
			id:           "admin-1",
			req:          dto.UpdateUserRequest{Active: boolPtr(false)},
			setupMock:    func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "unknown user",
			id:   "missing",
			req:  dto.UpdateUserRequest{Level: stringPtr(constant.RoleOwner)},
			setupMock: func() {
				mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := svc.Update(ctx, tt.req, tt.id)

			if tt.expectedCode != 0 {
				assert.Equal(t, tt.expectedCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	svc := service.New(mockRepo, &config.Config{}, mockCache, mocks.NewOtel())

	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	mockRepo.EXPECT().Exist(gomock.Any(), shared.FilterByID("u1", model.FieldID, model.TableName)).Return(true, nil)
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	ctx := shared.WithUser(context.Background(), "u1", "guest@example.com", constant.RoleCustomer)

	err := svc.UpdateProfile(ctx, dto.UpdateProfileRequest{Phone: stringPtr("0901234567")})
	assert.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
}
