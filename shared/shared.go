package shared

import (
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"encoding/json"
	"homestay/shared/cache"
	"homestay/shared/constant"
	"homestay/shared/dto"
	"homestay/shared/timezone"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const cacheKeySeparator = ":"

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

func ConvertStringToInt(value string) *int {
	if value == "" {
		return nil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to int")

		return nil
	}

	return &intValue
}

func ConvertStringToInt64(value string) *int64 {
	if value == "" {
		return nil
	}

	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to int64")

		return nil
	}

	return &intValue
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the fields of a struct into a map of updated fields.
// Zero values are skipped, so pointer fields are needed to write false or 0.
func TransformFields(data interface{}, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// FilterByIDs matches any of ids. Callers skip the query when ids is empty.
func FilterByIDs(ids []string, field, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    field,
				Value:    ids,
				Operator: dto.FilterOperatorIn,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins the prefix and parts with ":".
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), cacheKeySeparator)
}

// BuildCacheKeyWithQuery derives a stable key from the query params and filter of a list request.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	raw, err := json.Marshal(map[string]any{
		"params": params,
		"where":  where,
		"args":   args,
	})
	if err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to marshal cache key payload")

		return BuildCacheKey(prefix, constant.Asterix)
	}

	sum := md5.Sum(raw) //nolint:gosec

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:]))
}

// InvalidateCaches removes every key under prefix.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, BuildCacheKey(prefix, constant.Asterix)); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// UserID returns the authenticated user id stored by the auth middleware.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return userID
}

func UserRole(ctx context.Context) string {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return role
}

// Actor names who performs a write, used for the audit columns.
func Actor(ctx context.Context) string {
	if userID := UserID(ctx); userID != "" {
		return userID
	}

	return constant.ContextGuest
}

// WithUser stores the identity the auth middleware extracted from a token.
func WithUser(ctx context.Context, userID, email, role string) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, email)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

// CanManage reports whether the caller may change a resource owned by ownerID.
func CanManage(ctx context.Context, ownerID string) bool {
	return UserRole(ctx) == constant.RoleAdmin || (ownerID != "" && UserID(ctx) == ownerID)
}
