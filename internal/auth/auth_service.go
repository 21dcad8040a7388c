package auth

import (
	"context"
	"errors"
	"os"
	"time"

	autherrors "github.com/k-obata-3/leave-connect-api/internal/auth/errors"
	"github.com/k-obata-3/leave-connect-api/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 12 * time.Hour

// dummyHash is compared against when the login id is unknown so the
// response time does not reveal whether the account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
}

type service struct {
	users  user.Repository
	logger *zap.Logger
}

func NewService(users user.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{users: users, logger: l}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	u, err := s.users.FindByLoginID(ctx, req.LoginID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return LoginResponse{}, autherrors.ErrAuthenticationFailed
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		return LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		s.logger.Warn("password mismatch", zap.String("login_id", req.LoginID))
		return LoginResponse{}, autherrors.ErrAuthenticationFailed
	}

	token, err := signToken(u)
	if err != nil {
		s.logger.Error("token signing failed", zap.Error(err))
		return LoginResponse{}, err
	}

	s.logger.Info("login succeeded", zap.Int64("user_id", u.ID), zap.Int64("company_id", u.CompanyID))
	return LoginResponse{
		Token:     token,
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin(),
	}, nil
}

func signToken(u *user.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    u.ID,
		"company_id": u.CompanyID,
		"auth":       u.Auth,
		"iat":        now.Unix(),
		"exp":        now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
