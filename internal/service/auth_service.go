package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"groupchat/api/internal/apperr"
	"groupchat/api/internal/config"
	"groupchat/api/internal/ids"
	"groupchat/api/internal/mail"
	"groupchat/api/internal/models"
	"groupchat/api/internal/repository"
	"groupchat/api/internal/security"
)

const resetKeyPrefix = "pwreset:"

// AuthService is the session manager: signup, login, token validation,
// logout and the password-reset flow.
type AuthService struct {
	users  UserStore
	tokens TokenStore
	cache  *redis.Client
	mailer mail.Mailer
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewAuthService(
	users UserStore,
	tokens TokenStore,
	cache *redis.Client,
	mailer mail.Mailer,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		cache:  cache,
		mailer: mailer,
		cfg:    cfg,
		log:    log,
	}
}

type SignUpInput struct {
	FirstName    string
	LastName     string
	Email        string
	MobileNumber string
	Password     string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (models.User, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	// A missing password is rejected, never defaulted.
	if input.Email == "" || input.Password == "" || input.FirstName == "" {
		return models.User{}, apperr.E(apperr.KindValidation, "parameters missing")
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.KindStoreUnavailable, "failed to create new user", err)
	}

	user := models.User{
		ID:           ids.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		MobileNumber: input.MobileNumber,
		PasswordHash: passwordHash,
		Active:       true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return models.User{}, apperr.Wrap(apperr.KindConflict, "user already present with this email", err)
		}
		return models.User{}, apperr.Wrap(apperr.KindStoreUnavailable, "failed to create new user", err)
	}

	user.PasswordHash = nil
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return AuthResult{}, apperr.E(apperr.KindValidation, "parameters missing")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperr.Wrap(apperr.KindNotFound, "no user found with this email", err)
		}
		return AuthResult{}, apperr.Wrap(apperr.KindStoreUnavailable, "login failed", err)
	}

	if !user.Active {
		return AuthResult{}, apperr.E(apperr.KindAuthentication, "account is inactive")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, apperr.E(apperr.KindAuthentication, "wrong password")
	}

	tokenID := ids.New()
	now := time.Now()
	expiresAt := now.Add(s.cfg.Security.TokenTTL)

	signed, err := security.IssueSessionToken(s.cfg.Security.JWTSecret, user.ID, tokenID, s.cfg.Security.TokenTTL)
	if err != nil {
		return AuthResult{}, apperr.Wrap(apperr.KindStoreUnavailable, "login failed", err)
	}

	if err := s.tokens.Create(ctx, models.AuthToken{
		ID:        tokenID,
		UserID:    user.ID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return AuthResult{}, apperr.Wrap(apperr.KindStoreUnavailable, "login failed", err)
	}

	if groups, err := s.users.ListGroups(ctx, user.ID); err == nil {
		user.Groups = groups
	}

	user.PasswordHash = nil
	return AuthResult{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Validate checks the bearer token and returns the subject user ID. The
// signature and expiry come from the token itself; only the revocation
// check touches the registry, never the identity store.
func (s *AuthService) Validate(ctx context.Context, token string) (string, error) {
	claims, err := security.ParseSessionToken(token, s.cfg.Security.JWTSecret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuthentication, "invalid or expired authentication token", err)
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return "", apperr.Wrap(apperr.KindStoreUnavailable, "token validation failed", err)
	}
	if revoked {
		return "", apperr.E(apperr.KindAuthentication, "invalid or expired authentication token")
	}

	return claims.UserID, nil
}

// Logout revokes the token. It succeeds no matter how often it is
// called and no matter what the token looks like: a malformed or
// already-expired token has nothing left to revoke.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := security.ParseSessionToken(token, s.cfg.Security.JWTSecret)
	if err != nil {
		return nil
	}

	if err := s.tokens.Revoke(ctx, claims.TokenID(), claims.ExpiresAt.Time); err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, "logout failed", err)
	}
	return nil
}

// ResetPassword replaces the stored hash and revokes every outstanding
// token of the user, so stolen sessions die with the old password.
func (s *AuthService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if userID == "" {
		return apperr.E(apperr.KindValidation, "userId parameter is missing")
	}
	if newPassword == "" {
		return apperr.E(apperr.KindValidation, "password is missing")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "no user found", err)
		}
		return apperr.Wrap(apperr.KindStoreUnavailable, "password reset failed", err)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, "password reset failed", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, "password reset failed", err)
	}

	if err := s.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, "password reset failed", err)
	}
	return nil
}

// ForgotPassword stores a short-lived reset token and mails a reset
// link. Mail delivery is fire-and-forget: the response only reports
// whether the request was accepted, not whether the mail arrived.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return apperr.E(apperr.KindValidation, "user email address is missing")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "no user found with this email", err)
		}
		return apperr.Wrap(apperr.KindStoreUnavailable, "forgot password failed", err)
	}

	resetToken, err := security.GenerateResetToken(32)
	if err != nil {
		return apperr.Wrap(apperr.KindStoreUnavailable, "forgot password failed", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, resetKeyPrefix+resetToken, user.ID, s.cfg.Security.ResetTokenTTL).Err(); err != nil {
			return apperr.Wrap(apperr.KindStoreUnavailable, "forgot password failed", err)
		}
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		body := "Hi " + user.FullName() + ",\n\n" +
			"A password reset was requested for your account. Open the link below to choose a new password:\n\n" +
			s.cfg.Mail.ResetURL + "?token=" + resetToken + "\n\n" +
			"The link expires in " + s.cfg.Security.ResetTokenTTL.String() + "."
		if err := s.mailer.Send(sendCtx, user.Email, "Reset your password", body); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("reset mail send failed")
		}
	}()

	return nil
}

// ResetTokenUser resolves a reset token from a mailed link back to the
// user it was issued for.
func (s *AuthService) ResetTokenUser(ctx context.Context, resetToken string) (string, error) {
	if resetToken == "" {
		return "", apperr.E(apperr.KindValidation, "reset token is missing")
	}
	if s.cache == nil {
		return "", apperr.E(apperr.KindAuthentication, "invalid or expired reset token")
	}

	userID, err := s.cache.Get(ctx, resetKeyPrefix+resetToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.E(apperr.KindAuthentication, "invalid or expired reset token")
		}
		return "", apperr.Wrap(apperr.KindStoreUnavailable, "reset token lookup failed", err)
	}
	return userID, nil
}
