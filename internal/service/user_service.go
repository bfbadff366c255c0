package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	TeamID    *string `json:"team_id"`
	CreatedAt string  `json:"created_at"`
}

// --- Interface ---

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (UserResponse, error)
}

type userService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	logger    *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, jwtSecret []byte, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, jwtSecret: jwtSecret, logger: logger}
}

// --- Implementation ---

func (s *userService) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return UserResponse{}, errors.New("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	return toUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return TokenResponse{}, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return TokenResponse{}, errors.New("invalid email or password")
	}

	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return TokenResponse{Token: token}, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, fmt.Errorf("user not found: %w", err)
	}
	return toUserResponse(*user), nil
}

// --- Mapping ---

func toUserResponse(user model.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.TeamID != nil {
		s := user.TeamID.String()
		resp.TeamID = &s
	}
	return resp
}
