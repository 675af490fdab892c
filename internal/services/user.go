package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/metrics"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles accounts, tokens and profiles
type UserService struct {
	users     repository.UserStore
	swaps     repository.SwapStore
	metrics   *metrics.Metrics
	jwtSecret string
	jwtTTL    time.Duration
}

// NewUserService creates a new user service
func NewUserService(users repository.UserStore, swaps repository.SwapStore, m *metrics.Metrics, jwtSecret string, jwtTTL time.Duration) *UserService {
	return &UserService{
		users:     users,
		swaps:     swaps,
		metrics:   m,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// RegisterInput is the body of a sign-up request
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Location string `json:"location"`
}

// ProfileInput is the body of a profile update
type ProfileInput struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Location      string   `json:"location"`
	Bio           string   `json:"bio"`
	SkillsOffered []string `json:"skills_offered"`
	SkillsWanted  []string `json:"skills_wanted"`
	Availability  string   `json:"availability"`
	IsPublic      *bool    `json:"is_public"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ReceivedFeedback is one rating a user received
type ReceivedFeedback struct {
	SwapID    string              `json:"swap_id"`
	Rating    int                 `json:"rating"`
	Comment   string              `json:"comment"`
	Reviewer  *models.UserSummary `json:"reviewer,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.jwtTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// Authenticate resolves a bearer token to an active user
func (s *UserService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	userID, err := s.ValidateJWT(tokenString)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, "Invalid token", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthenticated("Invalid token")
		}
		return nil, err
	}
	if user.IsBanned {
		return nil, apperr.Forbidden("Account has been banned")
	}
	return user, nil
}

// Register creates an account and signs a token for it
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := models.NormalizeEmail(in.Email)
	if err := models.ValidateRegistration(in.Name, email, in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		PasswordHash:  string(hash),
		Location:      strings.TrimSpace(in.Location),
		SkillsOffered: []string{},
		SkillsWanted:  []string{},
		IsPublic:      true,
		Role:          models.RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.metrics.UserRegistrations.Inc()

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	return &AuthResult{Token: token, User: user}, nil
}

// EnsureAdmin creates an admin account for email unless one already exists.
// An existing non-admin account with that email is left untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if err := models.ValidateRegistration(name, email, password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			log.Warn().Str("user_id", existing.ID).Msg("Seed admin email belongs to a regular user")
		}
		return existing, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	now := time.Now().UTC()
	admin := &models.User{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(name),
		Email:         email,
		PasswordHash:  string(hash),
		SkillsOffered: []string{},
		SkillsWanted:  []string{},
		IsPublic:      false,
		Role:          models.RoleAdmin,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", admin.ID).Msg("Admin account created")
	return admin, nil
}

// Login checks credentials and signs a token
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = models.NormalizeEmail(email)
	if err := models.ValidateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperr.Validation("Password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthenticated("Invalid credentials")
		}
		return nil, err
	}
	if user.IsBanned {
		return nil, apperr.Forbidden("Account has been banned")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperr.Unauthenticated("Invalid credentials")
		}
		return nil, apperr.Internal("failed to compare password", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// GetByID returns a user's own record
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile overwrites the caller's editable profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)
	if err := models.ValidateName(in.Name); err != nil {
		return nil, err
	}
	if err := models.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := models.ValidateBio(in.Bio); err != nil {
		return nil, err
	}

	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	return s.users.UpdateProfile(ctx, userID, repository.ProfileUpdate{
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		Location:      strings.TrimSpace(in.Location),
		Bio:           in.Bio,
		SkillsOffered: models.NormalizeSkills(in.SkillsOffered),
		SkillsWanted:  models.NormalizeSkills(in.SkillsWanted),
		Availability:  strings.TrimSpace(in.Availability),
		IsPublic:      isPublic,
	})
}

// Browse lists the public profiles visible to userID
func (s *UserService) Browse(ctx context.Context, userID, skill string) ([]*models.PublicProfile, error) {
	users, err := s.users.ListPublic(ctx, userID, strings.TrimSpace(skill))
	if err != nil {
		return nil, err
	}
	profiles := make([]*models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Public())
	}
	return profiles, nil
}

// GetProfile returns userID's public profile. Private profiles are only
// visible to their owner.
func (s *UserService) GetProfile(ctx context.Context, actorID, userID string) (*models.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsPublic && user.ID != actorID {
		return nil, apperr.Forbidden("Profile is private")
	}
	return user.Public(), nil
}

// Stats returns the dashboard counters of user
func (s *UserService) Stats(ctx context.Context, user *models.User) (*models.UserStats, error) {
	counts, err := s.swaps.CountForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.UserStats{
		TotalSwaps:      counts.Total,
		PendingRequests: counts.Pending,
		CompletedSwaps:  counts.Completed,
		AverageRating:   user.AverageRating,
	}, nil
}

// FeedbackReceived lists the ratings other participants left for userID
func (s *UserService) FeedbackReceived(ctx context.Context, userID string) ([]*ReceivedFeedback, error) {
	swaps, err := s.swaps.ListFeedbackReceived(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(swaps))
	for _, sw := range swaps {
		ids = append(ids, sw.Feedback.ReviewerID)
	}
	reviewers, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*ReceivedFeedback, 0, len(swaps))
	for _, sw := range swaps {
		fb := &ReceivedFeedback{
			SwapID:    sw.ID,
			Rating:    sw.Feedback.Rating,
			Comment:   sw.Feedback.Comment,
			CreatedAt: sw.Feedback.CreatedAt,
		}
		if u, ok := reviewers[sw.Feedback.ReviewerID]; ok {
			fb.Reviewer = &models.UserSummary{ID: u.ID, Name: u.Name}
		}
		out = append(out, fb)
	}
	return out, nil
}

// SetPushToken stores the device token used for push notifications.
// An empty token clears it.
func (s *UserService) SetPushToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.users.SetPushToken(ctx, userID, nil)
	}
	return s.users.SetPushToken(ctx, userID, &token)
}
