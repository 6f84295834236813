package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cypherlabdev/odds-gateway-service/internal/models"
)

// Identity is the verified caller behind a token
type Identity struct {
	UserID    string
	Username  string
	SessionID string
	Admin     bool // may manage other users
}

// Gate verifies bearer tokens
type Gate interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Config holds auth configuration
type Config struct {
	JWTSecret  string
	TokenTTL   time.Duration // e.g., 24 * time.Hour
	MaxDevices int           // concurrent sessions per user
	HashCost   int           // bcrypt cost, bcrypt.DefaultCost when zero
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// Service authenticates users against the directory and issues session tokens
type Service struct {
	config Config
	secret []byte
	store  UserStore
	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a new auth service
func NewService(config Config, store UserStore, logger zerolog.Logger) (*Service, error) {
	if config.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = 24 * time.Hour
	}
	if config.MaxDevices <= 0 {
		config.MaxDevices = 1
	}
	if config.HashCost == 0 {
		config.HashCost = bcrypt.DefaultCost
	}

	return &Service{
		config: config,
		secret: []byte(config.JWTSecret),
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "auth_service").Logger(),
	}, nil
}

// Login checks credentials, opens a device session and returns a signed token
func (s *Service) Login(ctx context.Context, username, password, device string) (*LoginResult, error) {
	var (
		user    models.UserSummary
		session models.Session
	)

	err := s.store.Update(func(dir *Directory) error {
		u := dir.FindByUsername(username)
		if u == nil {
			return ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}

		u.Sessions = s.liveSessions(u.Sessions)
		if len(u.Sessions) >= s.config.MaxDevices {
			return ErrDeviceLimit
		}

		session = models.Session{
			ID:        uuid.New().String(),
			Device:    device,
			CreatedAt: s.now().UTC(),
		}
		u.Sessions = append(u.Sessions, session)
		user = u.Summary()
		return nil
	})
	if err != nil {
		s.logger.Info().
			Err(err).
			Str("username", username).
			Str("device", device).
			Msg("login rejected")
		return nil, err
	}

	token, err := s.sign(user.ID, session)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("session_id", session.ID).
		Str("device", device).
		Msg("user logged in")

	return &LoginResult{Token: token, User: user}, nil
}

// Logout ends the session the token belongs to
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}

	return s.store.Update(func(dir *Directory) error {
		u := dir.FindByID(claims.Subject)
		if u == nil {
			return ErrInvalidToken
		}
		for i, sess := range u.Sessions {
			if sess.ID == claims.ID {
				u.Sessions = append(u.Sessions[:i], u.Sessions[i+1:]...)
				s.logger.Info().
					Str("user_id", u.ID).
					Str("session_id", sess.ID).
					Msg("user logged out")
				return nil
			}
		}
		return ErrInvalidToken
	})
}

// Verify checks the signature, the expiry and that the session is still open
func (s *Service) Verify(ctx context.Context, token string) (Identity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return Identity{}, err
	}

	var identity Identity
	err = s.store.View(func(dir *Directory) error {
		u := dir.FindByID(claims.Subject)
		if u == nil {
			return ErrInvalidToken
		}
		for _, sess := range u.Sessions {
			if sess.ID == claims.ID {
				identity = Identity{UserID: u.ID, Username: u.Username, SessionID: sess.ID, Admin: u.Admin}
				return nil
			}
		}
		return ErrInvalidToken
	})
	if err != nil {
		return Identity{}, err
	}

	return identity, nil
}

// User returns the public view of one user
func (s *Service) User(ctx context.Context, userID string) (models.UserSummary, error) {
	var summary models.UserSummary
	err := s.store.View(func(dir *Directory) error {
		u := dir.FindByID(userID)
		if u == nil {
			return ErrUserNotFound
		}
		summary = u.Summary()
		return nil
	})
	return summary, err
}

// ListUsers returns every user sorted by username
func (s *Service) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users := make([]models.UserSummary, 0)
	err := s.store.View(func(dir *Directory) error {
		for i := range dir.Users {
			users = append(users, dir.Users[i].Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}

// RevokeSessions logs a user out of every device
func (s *Service) RevokeSessions(ctx context.Context, userID string) error {
	return s.store.Update(func(dir *Directory) error {
		u := dir.FindByID(userID)
		if u == nil {
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		revoked := len(u.Sessions)
		u.Sessions = make([]models.Session, 0)

		s.logger.Info().
			Str("user_id", userID).
			Int("revoked", revoked).
			Msg("revoked user sessions")
		return nil
	})
}

// CreateUser adds a user with a bcrypt-hashed password. Admins may manage other users.
func (s *Service) CreateUser(ctx context.Context, username, password string, admin bool) (models.UserSummary, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.UserSummary{}, errors.New("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.HashCost)
	if err != nil {
		return models.UserSummary{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var summary models.UserSummary
	err = s.store.Update(func(dir *Directory) error {
		if dir.FindByUsername(username) != nil {
			return fmt.Errorf("%w: %s", ErrUserExists, username)
		}
		u := models.User{
			ID:           uuid.New().String(),
			Username:     username,
			PasswordHash: string(hash),
			Admin:        admin,
			Sessions:     make([]models.Session, 0),
			CreatedAt:    s.now().UTC(),
		}
		dir.Users = append(dir.Users, u)
		summary = u.Summary()
		return nil
	})
	if err != nil {
		return models.UserSummary{}, err
	}

	s.logger.Info().
		Str("user_id", summary.ID).
		Str("username", username).
		Bool("admin", admin).
		Msg("created user")

	return summary, nil
}

// liveSessions drops sessions whose tokens have expired
func (s *Service) liveSessions(sessions []models.Session) []models.Session {
	cutoff := s.now().Add(-s.config.TokenTTL)
	live := make([]models.Session, 0, len(sessions))
	for _, sess := range sessions {
		if sess.CreatedAt.After(cutoff) {
			live = append(live, sess)
		}
	}
	return live
}

func (s *Service) sign(userID string, session models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.CreatedAt.Add(s.config.TokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *Service) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
