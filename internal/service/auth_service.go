package service

import (
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "coach-plans"

type RegisterInput struct {
	Name     string      `json:"name" validate:"required,max=200"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8,max=72"` // bcrypt ignores bytes past 72
	Role     domain.Role `json:"role" validate:"required,oneof=coach client"`
}

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// ParseToken verifies a bearer token and returns the user it was issued to.
	ParseToken(tokenString string) (primitive.ObjectID, error)
}

// --- Service Implementation ---

type authService struct {
	userRepo      repository.UserRepository
	coachRepo     repository.CoachRepository
	clientRepo    repository.ClientRepository
	jwtSecret     string
	jwtExpiration time.Duration
	validate      *validator.Validate
	logger        zerolog.Logger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	coachRepo repository.CoachRepository,
	clientRepo repository.ClientRepository,
	jwtSecret string,
	jwtExpiration time.Duration,
	logger zerolog.Logger,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		coachRepo:     coachRepo,
		clientRepo:    clientRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		validate:      newValidator(),
		logger:        logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates the user and the profile matching the requested role.
// A new client has no coach until one adds them to a roster.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	// 1. Validate
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	// 2. Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. Save the user; the unique email index settles concurrent sign-ups.
	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(KindConflict, "user with this email already exists")
		}
		return nil, err
	}

	// 4. Create the profile
	switch input.Role {
	case domain.RoleCoach:
		err = s.coachRepo.Create(ctx, &domain.Coach{UserID: user.ID})
	case domain.RoleClient:
		err = s.clientRepo.Create(ctx, &domain.Client{UserID: user.ID})
	}
	if err != nil {
		// Without a profile the account is unusable and its email is taken.
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("user_id", user.ID.Hex()).Msg("failed to remove user after profile error")
		}
		return nil, fmt.Errorf("failed to create %s profile: %w", input.Role, err)
	}

	s.logger.Info().Str("user_id", user.ID.Hex()).Str("role", string(input.Role)).Msg("user registered")
	user.PasswordHash = ""
	return user, nil
}

// Login checks the credentials and issues a JWT.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, validationError("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, newError(KindUnauthenticated, "invalid email or password")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, newError(KindUnauthenticated, "invalid email or password")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate authentication token: %w", err)
	}
	user.PasswordHash = ""
	return token, user, nil
}

// --- JWT Helper ---

// jwtClaims carries the user ID only. Roles are resolved per request from
// profiles, so a token never goes stale when a profile changes.
type jwtClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ParseToken(tokenString string) (primitive.ObjectID, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, newError(KindUnauthenticated, "invalid or expired token")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, newError(KindUnauthenticated, "invalid token subject")
	}
	return userID, nil
}
