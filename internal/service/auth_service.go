package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vendapay/internal/cache"
	"github.com/vendapay/internal/config"
	"github.com/vendapay/internal/models"
	"github.com/vendapay/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务
type AuthService struct {
	cfg         *config.Config
	accountRepo repository.AccountRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, accountRepo repository.AccountRepository) *AuthService {
	return &AuthService{
		cfg:         cfg,
		accountRepo: accountRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// JWTClaims JWT 声明
type JWTClaims struct {
	AccountID    uint   `json:"account_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(account *models.Account) (string, time.Time, error) {
	now := time.Now()
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := JWTClaims{
		AccountID:    account.ID,
		Username:     account.Username,
		Role:         account.Role,
		TokenVersion: account.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.UUID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	return ParseAccountJWT(s.cfg.JWT.SecretKey, tokenString)
}

// ParseAccountJWT 使用指定密钥解析账号 JWT
func ParseAccountJWT(secret, tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// Login 账号登录
func (s *AuthService) Login(username, password string) (*models.Account, string, time.Time, error) {
	account, err := s.accountRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if account == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(account.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, "", time.Time{}, ErrAccountDisabled
	}

	token, expiresAt, err := s.GenerateJWT(account)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	account.LastLoginAt = &now
	if err := s.accountRepo.Update(account); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetAccountAuthState(context.Background(), cache.BuildAccountAuthState(account))

	return account, token, expiresAt, nil
}

// ChangePassword 修改当前账号密码，成功后旧 Token 全部失效
func (s *AuthService) ChangePassword(accountID uint, oldPassword, newPassword string) error {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNotFound
	}
	if err := s.VerifyPassword(account.PasswordHash, oldPassword); err != nil {
		return ErrInvalidPassword
	}
	if oldPassword == newPassword {
		return ErrPasswordUnchanged
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	account.PasswordHash = hashedPassword
	revokeAccountTokens(account, time.Now())
	if err := s.accountRepo.Update(account); err != nil {
		return err
	}
	_ = cache.SetAccountAuthState(context.Background(), cache.BuildAccountAuthState(account))
	return nil
}

// Logout 注销当前账号的全部 Token
func (s *AuthService) Logout(accountID uint) error {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNotFound
	}
	revokeAccountTokens(account, time.Now())
	if err := s.accountRepo.Update(account); err != nil {
		return err
	}
	_ = cache.SetAccountAuthState(context.Background(), cache.BuildAccountAuthState(account))
	return nil
}

// revokeAccountTokens 使账号此前签发的 Token 全部失效
func revokeAccountTokens(account *models.Account, now time.Time) {
	account.TokenVersion++
	account.TokenInvalidBefore = &now
}
