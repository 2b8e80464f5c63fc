package service

import (
	"context"
	"errors"
	"fmt"
	"homestay/config"
	"homestay/infras/jwt"
	"homestay/infras/otel"
	"homestay/internal/domains/auth/model/dto"
	userModel "homestay/internal/domains/user/model"
	userDto "homestay/internal/domains/user/model/dto"
	userRepo "homestay/internal/domains/user/repository"
	"homestay/shared"
	"homestay/shared/constant"
	gDto "homestay/shared/dto"
	"homestay/shared/failure"
	"homestay/shared/password"
	"homestay/shared/timezone"

	"github.com/rs/zerolog/log"
)

const invalidCredentials = "invalid email or password"

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.TokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
	Me(ctx context.Context) (userDto.UserResponse, error)
}

type serviceImpl struct {
	userRepo   userRepo.User
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(userRepo userRepo.User, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		userRepo:   userRepo,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
	}
}

func filterByEmail(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    userModel.FieldEmail,
				Operator: gDto.FilterOperatorEq,
				Value:    email,
				Table:    userModel.TableName,
			},
		},
	}
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exists, err := s.userRepo.Exist(ctx, filterByEmail(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return fmt.Errorf("failed to check if user exists: %w", err)
	}

	if exists {
		return failure.Conflict("email already registered")
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err = s.userRepo.Insert(ctx, req.ToUserModel(hashedPassword)); err != nil {
		log.Error().Err(err).Msg("failed to create user")

		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.userRepo.Get(ctx, filterByEmail(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == "" {
		log.Warn().Str("email", req.Email).Msg("login attempt with non-existent email")

		return res, failure.Unauthorized(invalidCredentials)
	}

	if err := password.Verify(req.Password, user.Password); err != nil {
		log.Warn().Str("email", req.Email).Msg("login attempt with wrong password")

		return res, failure.Unauthorized(invalidCredentials)
	}

	if !user.Active {
		return res, failure.Forbidden("user account is deactivated")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, user.ID, user.Email, user.Level)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	lastLogin := timezone.Now()
	updatedFields := shared.TransformFields(dto.UpdateLastLoginRequest{LastLogin: lastLogin}, user.ID)

	if err := s.userRepo.Update(ctx, updatedFields, shared.FilterByID(user.ID, userModel.FieldID, userModel.TableName)); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to update last login")

		return res, fmt.Errorf("failed to update last login: %w", err)
	}

	user.LastLogin = &lastLogin

	res.FromTokenPair(tokenPair)
	res.User.FromModel(user)

	return res, nil
}

// RefreshToken issues a new pair for the holder of a valid refresh token, as long as the account is still active.
func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	claims, err := s.jwtService.ValidateToken(ctx, req.RefreshToken, jwt.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to validate refresh token")

		if errors.Is(err, jwt.ErrExpiredToken) {
			return res, failure.Unauthorized("refresh token has expired")
		}

		return res, failure.Unauthorized("invalid refresh token")
	}

	user, err := s.userRepo.Get(ctx, shared.FilterByID(claims.UserID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == "" || !user.Active {
		return res, failure.Unauthorized("invalid refresh token")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, user.ID, user.Email, user.Level)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID := shared.UserID(ctx)
	filter := shared.FilterByID(userID, userModel.FieldID, userModel.TableName)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == "" {
		return failure.NotFound("user not found")
	}

	if err := password.Verify(req.CurrentPassword, user.Password); err != nil {
		return failure.BadRequestFromString("current password is incorrect")
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return fmt.Errorf("failed to hash new password: %w", err)
	}

	updatedFields := shared.TransformFields(dto.UpdatePasswordRequest{Password: hashedPassword}, userID)

	if err = s.userRepo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *serviceImpl) Me(ctx context.Context) (res userDto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Me")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.userRepo.Get(ctx, shared.FilterByID(shared.UserID(ctx), userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == "" {
		return res, failure.NotFound("user not found")
	}

	res.FromModel(user)

	return res, nil
}
