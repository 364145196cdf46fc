package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharenet/backend/internal/models"
)

// ErrDuplicateEmail is returned when registering with an email that already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidCredentials is returned on a failed login. It deliberately does
// not distinguish an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotFound is returned when the requested account does not exist.
var ErrNotFound = errors.New("account not found")

// Store is the persistence boundary for accounts.
type Store interface {
	// Create inserts the account and fills ID and timestamps.
	// ErrDuplicateEmail on a unique violation.
	Create(ctx context.Context, acc *models.Account) error
	// GetByEmail returns nil, nil when the email is unknown.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) (*models.Account, error)
}

type Service interface {
	Register(ctx context.Context, name, email, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (string, *models.Account, error)
	ValidateToken(ctx context.Context, token string) (int64, error)
	GetUser(ctx context.Context, id int64) (*models.Account, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) (*models.Account, error)
}

// Options configure token issuance and the starting balance for new accounts.
type Options struct {
	Secret         []byte
	TokenTTL       time.Duration
	InitialCredits decimal.Decimal
	StorageTimeout time.Duration
}

type service struct {
	store Store
	opts  Options
}

func NewService(store Store, opts Options) Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &service{store: store, opts: opts}
}

var _ Service = (*service)(nil)

func (s *service) Register(ctx context.Context, name, email, password string) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	acc := &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Balance:      s.opts.InitialCredits,
	}
	if err := s.store.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *models.Account, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if acc == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.issueToken(acc.ID)
	if err != nil {
		return "", nil, err
	}
	return token, acc, nil
}

func (s *service) issueToken(accountID int64) (string, error) {
	now := time.Now()
	c := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(accountID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.opts.Secret)
}

func (s *service) ValidateToken(_ context.Context, token string) (int64, error) {
	tok, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}
	c, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || !tok.Valid {
		return 0, errors.New("invalid token")
	}
	return strconv.ParseInt(c.Subject, 10, 64)
}

func (s *service) GetUser(ctx context.Context, id int64) (*models.Account, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	return s.store.GetByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id int64, name, email string) (*models.Account, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	return s.store.UpdateProfile(ctx, id, name, email)
}

func (s *service) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StorageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.StorageTimeout)
}
