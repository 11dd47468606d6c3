package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	pkgAuth "github.com/angelmondragon/gymdesk-backend/pkg/auth"
	"github.com/angelmondragon/gymdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the staff authentication flows.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
	Register(ctx context.Context, req RegisterRequest) (*StaffDTO, error)
}

type sessionManager interface {
	Start(ctx context.Context, accessID string, userID uuid.UUID) error
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Users          store.StaffUserRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Clock          func() time.Time
}

type service struct {
	users   store.StaffUserRepository
	session sessionManager
	jwtCfg  config.JWTConfig
	pwdCfg  config.PasswordConfig
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("staff user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		users:   params.Users,
		session: params.SessionManager,
		jwtCfg:  params.JWTConfig,
		pwdCfg:  params.PasswordConfig,
		now:     now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, store.Classify(err, "update last login", invalidCredentialsMessage)
	}
	user.LastLoginAt = &now

	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Start(ctx, accessID, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return &LoginResponse{
		AccessToken: token,
		ExpiresAt:   now.Add(s.jwtCfg.AccessTTL()),
		User:        FromModel(user),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*StaffDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and name are required")
	}
	if err := security.ValidatePassword(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	role := enums.StaffRoleStaff
	if req.Role != "" {
		parsed, err := enums.ParseStaffRole(req.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		role = parsed
	}

	hash, err := security.HashPassword(req.Password, s.pwdCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.StaffUser{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return nil, store.Classify(err, "create staff user", "staff user not found")
	}
	dto := FromModel(user)
	return &dto, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.StaffUser, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup staff user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
