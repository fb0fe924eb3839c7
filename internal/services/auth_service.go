package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"bot_admin_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAuthDisabled       = errors.New("authentication is not configured")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// AdminRole is the only role issued by this backend.
const AdminRole = "admin"

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthConfig holds the admin account and token settings.
type AuthConfig struct {
	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	JWTExpiration     time.Duration
}

// --- AuthService Interface ---
type AuthService interface {
	Enabled() bool
	Login(req LoginRequest) (*AuthResponse, error)
}

type authService struct {
	cfg AuthConfig
}

// NewAuthService creates a new instance of AuthService.
// Login is refused while no password hash is configured.
func NewAuthService(cfg AuthConfig) AuthService {
	if cfg.JWTExpiration <= 0 {
		cfg.JWTExpiration = 24 * time.Hour
	}
	return &authService{cfg: cfg}
}

func (s *authService) Enabled() bool {
	return s.cfg.AdminPasswordHash != ""
}

// Login checks the admin credentials and issues an access token.
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.AdminUsername)) == 1
	// bcrypt runs even for a wrong username.
	passwordErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(req.Password))
	if !usernameOK || passwordErr != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateAccessToken([]byte(s.cfg.JWTSecret), s.cfg.JWTExpiration, req.Username, AdminRole)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	utils.LogInfo("Admin logged in", map[string]interface{}{"username": req.Username})
	return &AuthResponse{
		Username:    req.Username,
		Role:        AdminRole,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
