// Package service contains the business logic sitting between HTTP
// handlers and repositories.
package service

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"net/url"
	"strconv"
	"time"

	"github.com/Preeth02/aqi-using-ai/internal/mailer"
	"github.com/Preeth02/aqi-using-ai/internal/middleware"
	"github.com/Preeth02/aqi-using-ai/internal/models"
	"github.com/Preeth02/aqi-using-ai/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// verifyCodeTTL is how long an issued verification code stays valid.
const verifyCodeTTL = time.Hour

// AccountService implements the verification workflow and credential
// authentication on top of the user repository.
type AccountService struct {
	users  repository.UserRepository
	mailer mailer.Sender
}

// NewAccountService returns an AccountService using the given repository
// and email sender.
func NewAccountService(users repository.UserRepository, sender mailer.Sender) *AccountService {
	return &AccountService{users: users, mailer: sender}
}

// IssueResult reports the outcome of a signup attempt.
type IssueResult struct {
	// Created is true when a new user record was created, false when an
	// existing unverified record was refreshed.
	Created bool
	// EmailWarning carries a non-fatal delivery failure. The record is
	// never rolled back when the email cannot be sent; the visitor can
	// sign up again to get a fresh code.
	EmailWarning string
}

// IssueCode registers (or refreshes) an unverified user and dispatches a
// verification email with a fresh 6-digit code valid for one hour.
func (s *AccountService) IssueCode(ctx context.Context, username, email, password string) (*IssueResult, error) {
	existingVerified, err := s.users.GetVerifiedByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existingVerified != nil {
		return nil, models.NewConflictError("Username is already taken")
	}

	code, err := generateVerifyCode()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	expiry := time.Now().Add(verifyCodeTTL)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	result := &IssueResult{}

	existingByEmail, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	switch {
	case existingByEmail != nil && existingByEmail.IsVerified:
		return nil, models.NewConflictError("User already exists with this email")
	case existingByEmail != nil:
		// Unverified claim on the email: refresh the credentials and code.
		existingByEmail.Password = string(hashed)
		existingByEmail.VerifyCode = code
		existingByEmail.VerifyCodeExpiry = expiry
		if err := s.users.Update(ctx, existingByEmail); err != nil {
			return nil, err
		}
	default:
		user := &models.User{
			Username:            username,
			Email:               email,
			Password:            string(hashed),
			VerifyCode:          code,
			VerifyCodeExpiry:    expiry,
			IsAcceptingMessages: true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		result.Created = true
	}

	// Email dispatch failure is deliberately non-fatal: the created or
	// refreshed record stands, and the failure is surfaced as a warning.
	if err := s.mailer.SendVerificationEmail(ctx, email, username, code); err != nil {
		middleware.Logger.WarnContext(ctx, "verification email failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		result.EmailWarning = "Verification email could not be sent; sign up again to receive a new code"
	}

	return result, nil
}

// ConfirmCode checks a submitted verification code for the given username.
// An invalid code is reported as invalid regardless of expiry; a valid but
// expired code is reported as expired.
func (s *AccountService) ConfirmCode(ctx context.Context, username, code string) error {
	// The username may arrive percent-encoded from a profile URL.
	if decoded, err := url.QueryUnescape(username); err == nil {
		username = decoded
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User not found")
	}

	if user.VerifyCode != code {
		return models.NewValidationError("Invalid verification code")
	}
	if time.Now().After(user.VerifyCodeExpiry) {
		return models.NewCodeExpiredError("Code has expired, please sign up again to get a new code")
	}

	return s.users.SetVerified(ctx, user.ID)
}

// CheckUsername reports whether the username is still available. Only a
// verified holder makes a name unavailable; an unverified claim can be
// re-registered until one claimant verifies.
func (s *AccountService) CheckUsername(ctx context.Context, username string) (bool, error) {
	user, err := s.users.GetVerifiedByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return user == nil, nil
}

// Authenticate matches the identifier against a username or email and
// verifies the password. Unverified users cannot authenticate.
func (s *AccountService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewInvalidCredentialsError("No user found with these credentials")
	}
	if !user.IsVerified {
		return nil, models.NewUnverifiedError("Please verify your account before signing in")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewInvalidCredentialsError("Incorrect password")
	}
	return user, nil
}

// generateVerifyCode produces a 6-digit numeric code in [100000, 999999].
func generateVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(100000+n.Int64(), 10), nil
}
