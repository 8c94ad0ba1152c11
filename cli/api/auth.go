package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tinkerfai/tinkerfai/engine/session"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
)

const MinPasswordLength = 8

// ErrValidation is matched by local input checks that never reach the network.
var ErrValidation = errors.New("validation failed")

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

var fieldMessages = map[string]string{
	"Email.required":            "Email is required.",
	"Email.email":               "Please enter a valid email address.",
	"Password.required":         "Password is required.",
	"NewPassword.required":      "Password is required.",
	"NewPassword.min":           "Password must be at least 8 characters long.",
	"ConfirmPassword.eqfield":   "Passwords do not match.",
	"ConfirmationCode.required": "Please enter the verification code.",
	"FirstName.required":        "First name is required.",
	"LastName.required":         "Last name is required.",
}

func checkInput(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = fe.Error()
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignUpRequest struct {
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	FirstName       string `json:"firstName"       validate:"required"`
	LastName        string `json:"lastName"        validate:"required"`
}

type ConfirmSignUpRequest struct {
	Email            string `json:"email"            validate:"required,email"`
	ConfirmationCode string `json:"confirmationCode" validate:"required"`
}

type ResetPasswordRequest struct {
	Email            string `json:"email"            validate:"required,email"`
	ConfirmationCode string `json:"confirmationCode" validate:"required"`
	NewPassword      string `json:"newPassword"      validate:"required,min=8"`
	ConfirmPassword  string `json:"confirmPassword"  validate:"eqfield=NewPassword"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type signInResponse struct {
	Envelope
	Data struct {
		session.Tokens
		User session.User `json:"user"`
	} `json:"data"`
}

// SignInResult is what a successful sign-in stored in the session.
type SignInResult struct {
	Tokens session.Tokens
	User   session.User
}

// SignIn authenticates and persists the tokens and user profile.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := checkInput(req); err != nil {
		return nil, err
	}
	var out signInResponse
	if err := c.do(ctx, call{op: "sign in", method: http.MethodPost, path: "/signin", body: req, result: &out}); err != nil {
		return nil, err
	}
	if err := c.session.SaveSignIn(out.Data.Tokens, out.Data.User); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Signed in", "email", out.Data.User.Email)
	return &SignInResult{Tokens: out.Data.Tokens, User: out.Data.User}, nil
}

// SignUp registers an account. A confirmation code is sent by email.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := checkInput(req); err != nil {
		return "", err
	}
	return c.postMessage(ctx, "sign up", "/signup", req)
}

func (c *Client) ConfirmSignUp(ctx context.Context, req ConfirmSignUpRequest) (string, error) {
	req.ConfirmationCode = strings.TrimSpace(req.ConfirmationCode)
	if err := checkInput(req); err != nil {
		return "", err
	}
	return c.postMessage(ctx, "confirm sign up", "/confirm-signup", req)
}

func (c *Client) ResendConfirmation(ctx context.Context, email string) (string, error) {
	req := emailRequest{Email: strings.TrimSpace(email)}
	if err := checkInput(req); err != nil {
		return "", err
	}
	return c.postMessage(ctx, "resend confirmation", "/resend-confirmation", req)
}

// ForgotPassword requests a reset code for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	req := emailRequest{Email: strings.TrimSpace(email)}
	if err := checkInput(req); err != nil {
		return "", err
	}
	return c.postMessage(ctx, "forgot password", "/forgot-password", req)
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	req.ConfirmationCode = strings.TrimSpace(req.ConfirmationCode)
	if err := checkInput(req); err != nil {
		return "", err
	}
	return c.postMessage(ctx, "reset password", "/reset-password", req)
}

func (c *Client) postMessage(ctx context.Context, op, path string, body any) (string, error) {
	var out Envelope
	if err := c.do(ctx, call{op: op, method: http.MethodPost, path: path, body: body, result: &out}); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Logout tells the server to revoke the tokens, ignoring any failure, and
// then clears the local session.
func (c *Client) Logout(ctx context.Context) error {
	access, _ := c.session.AccessToken()
	refresh, _ := c.session.RefreshToken()
	body := map[string]string{"accessToken": access, "refreshToken": refresh}
	if err := c.do(ctx, call{op: "logout", method: http.MethodPost, path: "/logout", body: body}); err != nil {
		logger.FromContext(ctx).Debug("Ignoring logout error", "error", err)
	}
	return c.session.Reset()
}

type validateTokenResponse struct {
	Envelope
	Data struct {
		User session.User `json:"user"`
	} `json:"data"`
}

// ValidateToken asks the server whether the stored access token is still valid.
func (c *Client) ValidateToken(ctx context.Context) (*session.User, error) {
	token, ok := c.session.AccessToken()
	if !ok {
		return nil, &NotAuthenticatedError{}
	}
	var out validateTokenResponse
	err := c.do(ctx, call{
		op:          "validate token",
		method:      http.MethodPost,
		path:        "/validate-token",
		expireOn401: true,
		body:        map[string]string{"accessToken": token},
		result:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out.Data.User, nil
}
