package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Sentinel errors surfaced to the transport layer for status mapping.
var (
	ErrEmailTaken         = eris.New("email is already registered")
	ErrInvalidCredentials = eris.New("invalid credentials")
	ErrUnauthorized       = eris.New("not authorized")
)

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	UserID uint
	Name   string
	Email  string
}

// Session is the outcome of a successful register or login.
type Session struct {
	Token string
	User  Identity
}

// Service owns credential storage, password hashing and token issuance.
type Service struct {
	db       *gorm.DB
	logger   *logrus.Logger
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// Options configures the auth service.
type Options struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Secret   string
	TokenTTL time.Duration
}

const defaultTokenTTL = 30 * 24 * time.Hour

// NewService constructs the auth service.
func NewService(opts Options) (*Service, error) {
	if opts.DB == nil {
		return nil, eris.New("gorm DB is required")
	}
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, eris.New("token secret is required")
	}

	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	return &Service{
		db:       opts.DB,
		logger:   opts.Logger,
		secret:   []byte(opts.Secret),
		tokenTTL: ttl,
		now:      time.Now,
	}, nil
}

// Register creates a new user account and returns a signed session.
// A duplicate email yields ErrEmailTaken without creating a second record.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return nil, eris.New("name, email and password are required")
	}

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, eris.Wrap(ErrEmailTaken, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, eris.Wrap(err, "hashing password")
	}

	user := &User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		s.logError(logrus.Fields{"email": email}, err, "creating user")
		return nil, eris.Wrap(err, "creating user")
	}

	return s.newSession(user)
}

// Login verifies the credentials and returns a signed session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, eris.Wrap(ErrInvalidCredentials, "unknown email")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, eris.Wrap(ErrInvalidCredentials, "password mismatch")
	}

	return s.newSession(user)
}

// Authenticate resolves the caller identity from an Authorization header.
// Any failure, from a missing header to an expired token to a deleted user,
// collapses into ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, authorization string) (*Identity, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(authorization), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, eris.Wrap(ErrUnauthorized, "missing bearer token")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, eris.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, eris.Wrap(ErrUnauthorized, "token verification failed")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, eris.Wrap(ErrUnauthorized, "malformed subject")
	}

	var user User
	if err := s.db.WithContext(ctx).First(&user, uint(userID)).Error; err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, eris.Wrap(ErrUnauthorized, "user no longer exists")
		}
		s.logError(logrus.Fields{"user_id": userID}, err, "loading user for token")
		return nil, eris.Wrap(err, "loading user")
	}

	return &Identity{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
}

func (s *Service) newSession(user *User) (*Session, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, eris.Wrap(err, "signing token")
	}

	return &Session{
		Token: token,
		User:  Identity{UserID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logError(logrus.Fields{"email": email}, err, "fetching user by email")
		return nil, eris.Wrap(err, "fetching user by email")
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) logError(fields logrus.Fields, err error, message string) {
	if s.logger == nil {
		return
	}

	entry := s.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
