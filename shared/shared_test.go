package shared_test

import (
	"context"
	"errors"
	"homestay/shared"
	cacheMocks "homestay/shared/cache/mocks"
	"homestay/shared/constant"
	"homestay/shared/dto"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestConvertString(t *testing.T) {
	yes := true
	three := 3
	big := int64(2200000)

	assert.Equal(t, &yes, shared.ConvertStringToBool("true"))
	assert.Nil(t, shared.ConvertStringToBool(""))
	assert.Nil(t, shared.ConvertStringToBool("maybe"))

	assert.Equal(t, &three, shared.ConvertStringToInt("3"))
	assert.Nil(t, shared.ConvertStringToInt("three"))

	assert.Equal(t, &big, shared.ConvertStringToInt64("2200000"))
	assert.Nil(t, shared.ConvertStringToInt64(""))
}

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		total, limit, expected int
	}{
		{total: 0, limit: 10, expected: 1},
		{total: 10, limit: 10, expected: 1},
		{total: 11, limit: 10, expected: 2},
		{total: 5, limit: 0, expected: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
	}
}

func TestTransformFields(t *testing.T) {
	type updateRoom struct {
		Name     *string `db:"name"`
		Capacity *int    `db:"capacity"`
		Active   *bool   `db:"active"`
		Note     string
	}

	name := "Garden room"
	inactive := false

	fields := shared.TransformFields(updateRoom{Name: &name, Active: &inactive, Note: "no db tag"}, "owner-1")

	assert.Equal(t, &name, fields["name"])
	assert.Equal(t, &inactive, fields["active"])
	assert.NotContains(t, fields, "capacity")
	assert.Equal(t, "owner-1", fields[constant.FieldModifiedBy])
	assert.Contains(t, fields, constant.FieldModifiedAt)
	assert.Len(t, fields, 4)
}

func TestFilterByIDs(t *testing.T) {
	byID := shared.FilterByID("b1", "id", "bookings")
	where, args := byID.GetWhereClause()
	assert.Equal(t, "(bookings.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "b1"}, args)

	group := shared.FilterByIDs([]string{"r1", "r2"}, "room_id", "booking_items")
	where, args = group.GetWhereClause()
	assert.Equal(t, "(booking_items.room_id IN (:room_id_0, :room_id_1))", where)
	assert.Len(t, args, 2)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "homestay:get:h1", shared.BuildCacheKey("homestay:get", "h1"))

	params := dto.QueryParams{Page: 1, Limit: 10}
	daLat := dto.FilterGroup{Filters: []any{dto.Filter{Field: "city", Value: "Da Lat", Operator: dto.FilterOperatorEq}}}
	hue := dto.FilterGroup{Filters: []any{dto.Filter{Field: "city", Value: "Hue", Operator: dto.FilterOperatorEq}}}

	first := shared.BuildCacheKeyWithQuery("homestay:get_all", params, daLat)
	assert.Equal(t, first, shared.BuildCacheKeyWithQuery("homestay:get_all", params, daLat))
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery("homestay:get_all", params, hue))
	assert.Regexp(t, `^homestay:get_all:[0-9a-f]{32}$`, first)
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	cache.EXPECT().Clear(gomock.Any(), "homestay:get_all:*").Return(nil)
	shared.InvalidateCaches(context.Background(), cache, "homestay:get_all")

	cache.EXPECT().Clear(gomock.Any(), "room:get:*").Return(errors.New("redis down"))
	shared.InvalidateCaches(context.Background(), cache, "room:get")
}

func TestUserContext(t *testing.T) {
	guest := context.Background()
	assert.Empty(t, shared.UserID(guest))
	assert.Equal(t, constant.ContextGuest, shared.Actor(guest))

	owner := shared.WithUser(guest, "owner-1", "owner@example.com", constant.RoleOwner)
	admin := shared.WithUser(guest, "admin-1", "admin@example.com", constant.RoleAdmin)

	assert.Equal(t, "owner-1", shared.UserID(owner))
	assert.Equal(t, constant.RoleOwner, shared.UserRole(owner))
	assert.Equal(t, "owner-1", shared.Actor(owner))

	tests := []struct {
		name     string
		ctx      context.Context
		ownerID  string
		expected bool
	}{
		{name: "own resource", ctx: owner, ownerID: "owner-1", expected: true},
		{name: "someone else's", ctx: owner, ownerID: "owner-2"},
		{name: "admin", ctx: admin, ownerID: "owner-2", expected: true},
		{name: "no owner", ctx: guest, ownerID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.CanManage(tt.ctx, tt.ownerID))
		})
	}
}
