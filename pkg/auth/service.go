package auth

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/provizor/provizor/pkg/database/models"
	"github.com/provizor/provizor/pkg/database/repositories"
)

var (
	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when attempting to create a user that already exists
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidRole is returned when a user is created or updated with an unknown role
	ErrInvalidRole = errors.New("invalid role")
)

// Service provides authentication operations including login, user creation, and token validation
type Service struct {
	userRepo   *repositories.UserRepository
	jwtManager *JWTManager
}

// NewService creates a new authentication service with the provided repository and JWT manager
func NewService(userRepo *repositories.UserRepository, jwtManager *JWTManager) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// LoginRequest represents the data required for user authentication
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse contains the authentication token and user information returned after successful login
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo represents basic user information returned in authentication responses
type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// CreateUserRequest represents the data required to create a new user account
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Login authenticates a user with username/password and returns a JWT token if successful
func (s *Service) Login(req *LoginRequest) (*LoginResponse, error) {
	if req == nil {
		return nil, errors.New("login request cannot be nil")
	}
	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("user %s not found", req.Username)
			return nil, ErrInvalidCredentials
		}
		log.Printf("failed to get user %s: %v", req.Username, err)
		return nil, err
	}

	if !user.CheckPassword(req.Password) {
		log.Printf("invalid password for user %s", req.Username)
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		log.Printf("failed to generate token for user %s: %v", req.Username, err)
		return nil, err
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.jwtManager.tokenDuration),
		User: UserInfo{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName,
			Email:    user.Email,
			Role:     user.Role,
		},
	}, nil
}

// CreateUser creates a new user account with the provided information
func (s *Service) CreateUser(req *CreateUserRequest) (*models.User, error) {
	if req == nil {
		return nil, errors.New("create user request cannot be nil")
	}
	if _, err := s.userRepo.GetByUsername(req.Username); err == nil {
		return nil, ErrUserExists
	}

	role := req.Role
	if role == "" {
		role = models.RoleViewer
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	user := &models.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     role,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by their ID
func (s *Service) GetUser(userID uint) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// ValidateToken verifies a JWT token and returns the parsed claims if valid
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.jwtManager.Verify(tokenString)
}
