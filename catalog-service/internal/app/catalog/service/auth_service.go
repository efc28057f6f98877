package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"texnomart/catalog-service/internal/app/catalog/entity"
	"texnomart/catalog-service/internal/app/catalog/repository"
	"texnomart/catalog-service/internal/app/catalog/util"
	"texnomart/pkg/metrics"
)

// AuthService реализует две независимые схемы аутентификации:
// постоянный opaque токен в Redis и пару JWT без серверного состояния.
type AuthService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *util.JWTManager

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *util.JWTManager,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
	}
}

// Register создает обычную учетную запись (без прав staff и superuser)
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	metrics.AuthRegistrations.Inc()
	return user, nil
}

// Login проверяет учетные данные и возвращает постоянный opaque токен пользователя
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (string, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		metrics.AuthLogins.WithLabelValues("token", "failed").Inc()
		return "", err
	}

	candidate, err := util.GenerateOpaqueToken()
	if err != nil {
		return "", err
	}

	token, err := s.tokenRepo.GetOrCreate(ctx, user.ID, candidate)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	metrics.AuthLogins.WithLabelValues("token", "success").Inc()
	metrics.AuthTokensIssued.WithLabelValues("opaque").Inc()
	return token, nil
}

// Logout удаляет opaque токен пользователя, после чего он отклоняется
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.tokenRepo.DeleteForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// ObtainTokenPair выдает access и refresh JWT
func (s *AuthService) ObtainTokenPair(ctx context.Context, req *entity.LoginRequest) (*entity.TokenPair, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		metrics.AuthLogins.WithLabelValues("jwt", "failed").Inc()
		return nil, err
	}

	access, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	refresh, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	metrics.AuthLogins.WithLabelValues("jwt", "success").Inc()
	metrics.AuthTokensIssued.WithLabelValues("access").Inc()
	metrics.AuthTokensIssued.WithLabelValues("refresh").Inc()
	return &entity.TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshAccessToken выдает новый access токен по действующему refresh токену
func (s *AuthService) RefreshAccessToken(ctx context.Context, refresh string) (string, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refresh)
	if err != nil {
		return "", ErrInvalidToken
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return "", err
	}

	access, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return "", err
	}

	metrics.AuthTokensIssued.WithLabelValues("access").Inc()
	return access, nil
}

// AuthenticateToken находит пользователя по opaque токену
func (s *AuthService) AuthenticateToken(ctx context.Context, token string) (*entity.User, error) {
	userID, err := s.tokenRepo.GetUserID(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to authenticate token: %w", err)
	}
	return s.activeUser(ctx, userID)
}

// AuthenticateJWT находит пользователя по access JWT
func (s *AuthService) AuthenticateJWT(ctx context.Context, access string) (*entity.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(access)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.activeUser(ctx, claims.UserID)
}

// authenticate сверяет логин и пароль. Неизвестный логин и неверный пароль
// дают одну и ту же ошибку, bcrypt выполняется в обоих случаях.
func (s *AuthService) authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			util.CheckPassword(password, s.dummyPasswordHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if !util.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func (s *AuthService) activeUser(ctx context.Context, userID uint) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = util.HashPassword("texnomart-timing-equalizer")
	})
	return s.dummyHash
}
