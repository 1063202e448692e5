package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"psyjaciele/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

type Service struct {
	repo   Repository
	tokens auth.TokenIssuer
	now    func() time.Time
	cost   int
}

func NewService(repo Repository, tokens auth.TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
	}
}

// Session es lo que devuelven register y login.
type Session struct {
	User  User
	Token string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" {
		return Session{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if email == "" {
		return Session{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if in.Password == "" {
		return Session{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	u, err := s.create(ctx, username, email, in.Password, auth.RoleUser)
	if err != nil {
		return Session{}, err
	}
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, storeErr(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *Service) Profile(ctx context.Context, caller auth.Principal) (User, error) {
	if !caller.IsAuthenticated() {
		return User{}, ErrUnauthenticated
	}
	u, err := s.repo.GetByID(ctx, caller.UserID)
	if err != nil {
		return User{}, storeErr(err)
	}
	return u, nil
}

// EnsureAdmin crea el admin inicial si todavía no hay ninguno.
// Devuelve true si lo creó.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	has, err := s.repo.HasAdmin(ctx)
	if err != nil {
		return false, storeErr(err)
	}
	if has {
		return false, nil
	}

	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return false, fmt.Errorf("%w: admin seed needs username, email and password", ErrInvalidInput)
	}

	if _, err := s.create(ctx, username, email, password, auth.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) create(ctx context.Context, username, email, password string, role auth.Role) (User, error) {
	exists, err := s.repo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return User{}, storeErr(err)
	}
	if exists {
		return User{}, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// el índice único del store cubre la carrera entre Exists y Create
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, storeErr(err)
	}
	return u, nil
}

func (s *Service) session(u User) (Session, error) {
	token, err := s.tokens.Issue(u.Principal())
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{User: u, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyExists) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
