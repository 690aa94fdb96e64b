package server

import (
	"log/slog"

	"github.com/Preeth02/aqi-using-ai/internal/middleware"
	"github.com/Preeth02/aqi-using-ai/internal/models"
	"github.com/Preeth02/aqi-using-ai/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SignupRequest represents the registration payload
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyCodeRequest carries the username and the emailed 6-digit code
type VerifyCodeRequest struct {
	Username string `json:"username"`
	Code     string `json:"verifyCode"`
}

// SignInRequest represents the login payload. Identifier matches either
// username or email.
type SignInRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Signup handles user registration and dispatches a verification email
func (s *Server) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		return respondError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return respondError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return respondError(c, models.NewValidationError(err.Error()))
	}

	result, err := s.accounts.IssueCode(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	if result.EmailWarning != "" {
		middleware.Logger.WarnContext(c.UserContext(), "verification email not delivered",
			slog.String("username", req.Username),
			slog.String("warning", result.EmailWarning))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully. Please verify your account.",
	})
}

// VerifyCode confirms a pending registration with the emailed code
func (s *Server) VerifyCode(c *fiber.Ctx) error {
	var req VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Code == "" {
		return respondError(c, models.NewValidationError("Username and code are required"))
	}

	if err := s.accounts.ConfirmCode(c.UserContext(), req.Username, req.Code); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Account verified successfully",
	})
}

// CheckUsernameUnique reports whether a username is free to claim.
// Unverified holders do not block the name.
func (s *Server) CheckUsernameUnique(c *fiber.Ctx) error {
	username := c.Query("username")
	if err := validation.ValidateUsername(username); err != nil {
		return respondError(c, models.NewValidationError(err.Error()))
	}

	unique, err := s.accounts.CheckUsername(c.UserContext(), username)
	if err != nil {
		return respondError(c, err)
	}
	if !unique {
		return respondError(c, models.NewConflictError("Username is already taken"))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Username is unique",
	})
}

// SignIn authenticates a verified user and issues a session token
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Identifier == "" || req.Password == "" {
		return respondError(c, models.NewValidationError("Identifier and password are required"))
	}

	user, err := s.accounts.Authenticate(c.UserContext(), req.Identifier, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user signed in",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Signed in successfully",
		"token":   token,
		"user":    user,
	})
}
