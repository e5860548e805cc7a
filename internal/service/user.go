// Package service implements the business logic for authentication and
// owner-scoped todos, delegating persistence to repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/akarpenko/todoapi/internal/common"
	"github.com/akarpenko/todoapi/internal/models"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// UserRepository defines the persistence operations required by the
// user service.
type UserRepository interface {
	// Create inserts a user and returns the assigned id, or
	// common.ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	// FindByEmail looks a user up by email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByToken looks a user up by id and exact token-list entry.
	FindByToken(ctx context.Context, id primitive.ObjectID, access, token string) (*models.User, error)
	// AddToken appends a token entry to the user's list.
	AddToken(ctx context.Context, id primitive.ObjectID, entry models.TokenEntry) error
	// RemoveToken removes the entry with the given token string.
	RemoveToken(ctx context.Context, id primitive.ObjectID, token string) error
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	// Delete removes the user record.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TokenCodec signs and verifies issued tokens.
type TokenCodec interface {
	Issue(subject, access string) (string, error)
	Verify(token string) (subject, access string, err error)
}

// UserService implements registration, login, token validation, and
// logout over a UserRepository and a TokenCodec.
type UserService struct {
	repo       UserRepository
	codec      TokenCodec
	bcryptCost int
}

// NewUserService constructs a UserService. bcryptCost is the cost factor
// used when hashing passwords; higher costs more compute per hash.
func NewUserService(repo UserRepository, codec TokenCodec, bcryptCost int) *UserService {
	return &UserService{repo: repo, codec: codec, bcryptCost: bcryptCost}
}

// NormalizeEmail trims surrounding whitespace and lowercases an email
// address, so lookups and the unique index see one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return common.NewValidationError("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return common.NewValidationError("email", "is not a valid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return common.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// HashPassword hashes a plaintext password with bcrypt. The salt is
// generated fresh per call and embedded in the output.
func (s *UserService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func (s *UserService) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register validates the credentials, stores a new user with a hashed
// password, and issues the first token. Returns the created user and the
// token to hand to the client.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validatePassword(password); err != nil {
		return nil, "", err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Tokens:       []models.TokenEntry{},
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.ID = id

	tok, err := s.issueAndStore(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, tok, nil
}

// Login resolves a user by credentials and issues a fresh token. Unknown
// email and wrong password both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.findByCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	tok, err := s.issueAndStore(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, tok, nil
}

func (s *UserService) findByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.CheckPassword(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) issueAndStore(ctx context.Context, user *models.User) (string, error) {
	tok, err := s.codec.Issue(user.ID.Hex(), models.AccessAuth)
	if err != nil {
		return "", err
	}

	entry := models.TokenEntry{Access: models.AccessAuth, Token: tok}
	if err := s.repo.AddToken(ctx, user.ID, entry); err != nil {
		return "", err
	}
	user.Tokens = append(user.Tokens, entry)
	return tok, nil
}

// FindByToken resolves a user from a presented token. The token must
// both verify cryptographically and still be present in the stored token
// list; either check failing yields common.ErrInvalidToken.
func (s *UserService) FindByToken(ctx context.Context, tok string) (*models.User, error) {
	subject, access, err := s.codec.Verify(tok)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	id, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repo.FindByToken(ctx, id, access, tok)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// Logout removes the presented token from the user's stored list,
// revoking it even though its signature stays valid.
func (s *UserService) Logout(ctx context.Context, user *models.User, tok string) error {
	return s.repo.RemoveToken(ctx, user.ID, tok)
}

// SetPassword replaces the user's password. The hash is recomputed only
// when the plaintext actually differs from the current password; setting
// the same password again is a no-op, never a hash of a hash.
func (s *UserService) SetPassword(ctx context.Context, user *models.User, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	if s.CheckPassword(password, user.PasswordHash) {
		return nil
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

// DeleteAccount removes the user record entirely, revoking every issued
// token with it.
func (s *UserService) DeleteAccount(ctx context.Context, user *models.User) error {
	return s.repo.Delete(ctx, user.ID)
}
