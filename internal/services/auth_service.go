package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/reservation"
	"railway/internal/utils"
)

// TokenService issues and verifies HS256 tokens. Users and employees sign with
// different secrets so a token of one kind is never accepted as the other.
type TokenService struct {
	UserSecret     []byte
	EmployeeSecret []byte
	TTL            time.Duration
	Now            func() time.Time
}

// Claims is the token payload.
type Claims struct {
	Kind  models.OwnerKind `json:"kind"`
	Name  string           `json:"name"`
	Email string           `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (s TokenService) secret(kind models.OwnerKind) ([]byte, error) {
	var key []byte
	switch kind {
	case models.OwnerUser:
		key = s.UserSecret
	case models.OwnerEmployee:
		key = s.EmployeeSecret
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("no signing secret for %q", kind)
	}
	return key, nil
}

func (s TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s TokenService) Issue(p domain.Principal) (string, time.Time, error) {
	key, err := s.secret(p.Kind)
	if err != nil {
		return "", time.Time{}, err
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := s.now()
	exp := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Kind:  p.Kind,
		Name:  p.Name,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a token of the given kind and returns its principal.
func (s TokenService) Parse(kind models.OwnerKind, raw string) (domain.Principal, error) {
	key, err := s.secret(kind)
	if err != nil {
		return domain.Principal{}, err
	}
	var claims Claims
	_, err = jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}
	if claims.Kind != kind || claims.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: token kind mismatch", domain.ErrInvalidCredentials)
	}
	return domain.Principal{Kind: kind, ID: claims.Subject, Name: claims.Name, Email: claims.Email}, nil
}

// Accounts is the slice of the directory auth needs.
type Accounts interface {
	CreateUser(ctx context.Context, u models.User) error
	UserByLogin(ctx context.Context, login string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
	SetUserPassword(ctx context.Context, userID, hash string) error
	EmployeeByID(ctx context.Context, id string) (models.Employee, error)
}

type AuthService struct {
	Accounts  Accounts
	Tokens    TokenService
	NewID     func(prefix string) string
	RequestID string
}

type RegisterInput struct {
	UserName string `json:"user_name" binding:"required,max=64"`
	Name     string `json:"name" binding:"required,max=128"`
	Email    string `json:"email" binding:"required,email"`
	MobileNo string `json:"mobile_no" binding:"omitempty,max=20"`
	Password string `json:"password" binding:"required,min=8"`
}

// ChangePasswordInput is the body of a password change.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// AuthResult is returned by every login.
type AuthResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Principal domain.Principal `json:"principal"`
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	u := models.User{
		UserName: strings.TrimSpace(in.UserName),
		Name:     utils.NormalizeSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		MobileNo: strings.TrimSpace(in.MobileNo),
	}
	if u.UserName == "" || u.Name == "" {
		return models.User{}, domain.ValidationError{Field: "name", Msg: "must not be blank"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.ID = s.newID("USR")

	if err := s.Accounts.CreateUser(ctx, u); err != nil {
		return models.User{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "register", "user_id="+u.ID)
	return u, nil
}

func (s AuthService) LoginUser(ctx context.Context, login, password string) (AuthResult, error) {
	u, err := s.Accounts.UserByLogin(ctx, login)
	if err != nil {
		if domain.IsNotFound(err) {
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	return s.issue(domain.Principal{Kind: models.OwnerUser, ID: u.ID, Name: u.Name, Email: u.Email})
}

func (s AuthService) LoginEmployee(ctx context.Context, employeeID, password string) (AuthResult, error) {
	e, err := s.Accounts.EmployeeByID(ctx, employeeID)
	if err != nil {
		if domain.IsNotFound(err) {
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	return s.issue(domain.Principal{Kind: models.OwnerEmployee, ID: e.ID, Name: e.Name, Email: e.Email})
}

// ChangePassword replaces a user's password after verifying the current one.
func (s AuthService) ChangePassword(ctx context.Context, who domain.Principal, in ChangePasswordInput) error {
	if who.Kind != models.OwnerUser {
		return domain.ValidationError{Field: "principal", Msg: "users only"}
	}
	if in.NewPassword == in.CurrentPassword {
		return domain.ValidationError{Field: "new_password", Msg: "must differ from the current password"}
	}
	u, err := s.Accounts.UserByID(ctx, who.ID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.Accounts.SetUserPassword(ctx, u.ID, string(hash)); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "auth", "change_password", "user_id="+u.ID)
	return nil
}

func (s AuthService) issue(p domain.Principal) (AuthResult, error) {
	token, exp, err := s.Tokens.Issue(p)
	if err != nil {
		return AuthResult{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("%s=%s", p.Kind, p.ID))
	return AuthResult{Token: token, ExpiresAt: exp, Principal: p}, nil
}

func (s AuthService) newID(prefix string) string {
	if s.NewID != nil {
		return s.NewID(prefix)
	}
	return reservation.NewID(prefix)
}
