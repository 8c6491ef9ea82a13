// ABOUTME: Account flows on top of the API client: login, register, passwords, logout
// ABOUTME: Inputs are checked with validator before any request and mapped to French messages

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
)

// Destination is where the user goes after a successful login
type Destination int

const (
	// DestProfileSetup is the academic profile wizard
	DestProfileSetup Destination = iota
	// DestExplorer is the experience explorer
	DestExplorer
)

func (d Destination) String() string {
	if d == DestExplorer {
		return "explorer"
	}
	return "profile-setup"
}

// Messages returned on success, as the web front-end displayed them
const (
	MsgForgotSent    = "Si cet email existe, un lien de réinitialisation a été envoyé. Vérifiez votre boîte de réception."
	MsgResetDone     = "Votre mot de passe a été réinitialisé."
	MsgLogoutDone    = "Déconnexion réussie"
	MsgPasswordWeak  = "Le mot de passe est faible, il doit avoir une taille supérieure à 8 et contenir au moins une majuscule, un chiffre et un caractère spécial"
	MsgBothRequired  = "Veuillez remplir les deux champs."
	MsgPasswordsDiff = "Les mots de passe ne correspondent pas."
)

// API is the subset of the client used by the flows
type API interface {
	Login(ctx context.Context, in client.LoginRequest) (*model.LoginResponse, error)
	Me(ctx context.Context) (*model.UserSummary, error)
	ProfileStatus(ctx context.Context) (*model.ProfileStatus, error)
	Register(ctx context.Context, in client.RegisterRequest) (*model.MessageResponse, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, in client.ForgotPasswordRequest) (*model.MessageResponse, error)
	ResetPassword(ctx context.Context, token string, in client.ResetPasswordRequest) (*model.MessageResponse, error)
	ChangePassword(ctx context.Context, in client.ChangePasswordRequest) (*model.MessageResponse, error)
}

// LoginInput is the login form
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the registration form
type RegisterInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

// ForgotInput is the forgotten password form
type ForgotInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetInput is the reset form reached from the emailed link
type ResetInput struct {
	Token        string `json:"token" validate:"required"`
	Password     string `json:"password" validate:"required,strongpassword"`
	Confirmation string `json:"confirmation" validate:"required,eqfield=Password"`
}

// ChangeInput is the change password form of a logged-in user
type ChangeInput struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,min=6,nefield=Current"`
}

// messages maps "field.tag" to the message shown under the field
var messages = map[string]string{
	"email.required":            "L'email est requis",
	"email.email":               "L'adresse email n'est pas valide",
	"password.required":         "Le mot de passe est requis",
	"password.min":              "Le mot de passe doit contenir au moins 6 caractères",
	"password.strongpassword":   MsgPasswordWeak,
	"first_name.required":       "Le prénom est requis",
	"last_name.required":        "Le nom est requis",
	"token.required":            "Lien de réinitialisation invalide",
	"confirmation.required":     MsgBothRequired,
	"confirmation.eqfield":      MsgPasswordsDiff,
	"current_password.required": "Le mot de passe actuel est requis",
	"new_password.required":     "Le nouveau mot de passe est requis",
	"new_password.min":          "Le mot de passe doit contenir au moins 6 caractères",
	"new_password.nefield":      "Le nouveau mot de passe doit être différent de l'actuel",
}

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// StrongPassword reports whether p has at least 8 characters, an uppercase
// letter, a digit and a special character
func StrongPassword(p string) bool {
	return utf8.RuneCountInString(p) >= 8 &&
		upperRe.MatchString(p) &&
		digitRe.MatchString(p) &&
		specialRe.MatchString(p)
}

// ValidationError carries per-field messages for a rejected form
type ValidationError struct {
	Fields form.FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Fields.Error()
}

// Service runs the account flows
type Service struct {
	api      API
	session  *session.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a Service. sess may be nil when no local state is kept.
func New(api API, sess *session.Store, opts ...Option) *Service {
	s := &Service{
		api:      api,
		session:  sess,
		validate: newValidator(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// Registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

// Check validates a form input and returns a *ValidationError when any
// field is rejected. Only the first message per field is kept.
func (s *Service) Check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating input: %w", err)
	}
	fields := form.FieldErrors{}
	for _, fe := range verrs {
		key := fe.Field() + "." + fe.Tag()
		msg, ok := messages[key]
		if !ok {
			msg = "Valeur invalide"
		}
		fields.Add(fe.Field(), msg)
	}
	return &ValidationError{Fields: fields}
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	User *model.UserSummary
	Next Destination
}

// Login signs the user in and decides where to go next. A complete academic
// profile leads to the explorer; an incomplete one, or any failure reading
// the profile status, leads to the setup wizard.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.Check(in); err != nil {
		return nil, err
	}
	resp, err := s.api.Login(ctx, client.LoginRequest(in))
	if err != nil {
		return nil, err
	}
	res := &LoginResult{User: resp.User, Next: DestProfileSetup}
	if res.User == nil {
		if u, err := s.api.Me(ctx); err == nil {
			res.User = u
		} else {
			s.logger.Warn("fetching user after login", "error", err)
		}
	}
	status, err := s.api.ProfileStatus(ctx)
	switch {
	case err != nil:
		s.logger.Warn("checking profile status", "error", err)
	case status.IsComplete:
		res.Next = DestExplorer
	}
	s.logger.Info("logged in", "next", res.Next.String())
	return res, nil
}

// Register creates a standard user account
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.Check(in); err != nil {
		return "", err
	}
	resp, err := s.api.Register(ctx, client.RegisterRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Role:      model.RoleUser,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Forgot asks for a reset link. The reply does not reveal whether the
// address exists.
func (s *Service) Forgot(ctx context.Context, in ForgotInput) (string, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.Check(in); err != nil {
		return "", err
	}
	if _, err := s.api.ForgotPassword(ctx, client.ForgotPasswordRequest(in)); err != nil {
		return "", err
	}
	return MsgForgotSent, nil
}

// Reset sets a new password using the emailed token
func (s *Service) Reset(ctx context.Context, in ResetInput) (string, error) {
	if in.Password == "" || in.Confirmation == "" {
		fields := form.FieldErrors{}
		fields.Add("confirmation", MsgBothRequired)
		return "", &ValidationError{Fields: fields}
	}
	if err := s.Check(in); err != nil {
		return "", err
	}
	resp, err := s.api.ResetPassword(ctx, in.Token, client.ResetPasswordRequest{Password: in.Password})
	if err != nil {
		return "", err
	}
	if resp.Message != "" {
		return resp.Message, nil
	}
	return MsgResetDone, nil
}

// Change updates the password of the logged-in user
func (s *Service) Change(ctx context.Context, in ChangeInput) (string, error) {
	if err := s.Check(in); err != nil {
		return "", err
	}
	resp, err := s.api.ChangePassword(ctx, client.ChangePasswordRequest{
		CurrentPassword: in.Current,
		NewPassword:     in.New,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Logout tells the backend when a token is held, then always clears the
// local session. A failed backend call is logged, not returned.
func (s *Service) Logout(ctx context.Context) error {
	if s.session == nil || s.session.AccessToken() != "" {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.Warn("backend logout failed", "error", err)
		}
	}
	if s.session == nil {
		return nil
	}
	return s.session.Logout()
}
