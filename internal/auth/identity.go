package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ecommerce-backend/internal/apperrors"
	"ecommerce-backend/internal/email"
	"ecommerce-backend/internal/models"
)

// UserStore is the slice of the user repository the identity service
// needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
}

const confirmTokenTTL = 24 * time.Hour

// IdentityService owns user accounts: registration, login, email
// confirmation and profile edits.
type IdentityService struct {
	users       UserStore
	hasher      PasswordHasher
	tokens      *TokenManager
	sender      email.Sender
	confirmBase string
	logger      *zap.Logger
}

func NewIdentityService(users UserStore, hasher PasswordHasher, tokens *TokenManager, sender email.Sender, confirmBase string, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		sender:      sender,
		confirmBase: confirmBase,
		logger:      logger,
	}
}

// Register creates an account with the User role and emails a
// confirmation link. The email send is best-effort: a delivery failure
// is logged and registration still succeeds.
func (s *IdentityService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.register(ctx, req, []string{models.RoleUser}, false)
}

// RegisterAdmin and RegisterMod create privileged accounts. They are
// provisioned by an existing admin, so the email is treated as
// confirmed and no confirmation mail goes out.
func (s *IdentityService) RegisterAdmin(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.register(ctx, req, []string{models.RoleAdmin, models.RoleUser}, true)
}

func (s *IdentityService) RegisterMod(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.register(ctx, req, []string{models.RoleMod, models.RoleUser}, true)
}

func (s *IdentityService) register(ctx context.Context, req models.RegisterRequest, roles []string, confirmed bool) (*models.User, error) {
	if strings.TrimSpace(req.Password) == "" {
		return nil, apperrors.Validation("password must not be blank")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		PasswordHash:   hash,
		Roles:          roles,
		EmailConfirmed: confirmed,
	}
	if !confirmed {
		user.ConfirmToken = uuid.NewString()
		user.ConfirmExpires = time.Now().Add(confirmTokenTTL)
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if !confirmed {
		s.sendConfirmationMail(ctx, user)
	}
	return user, nil
}

// Login verifies credentials and returns a signed token. Unknown user,
// wrong password and unconfirmed email all produce the same generic
// auth failure so callers cannot enumerate accounts.
func (s *IdentityService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, time.Time, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, "", time.Time{}, apperrors.ErrUnauthorized
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, "", time.Time{}, apperrors.ErrUnauthorized
	}
	if !user.EmailConfirmed {
		return nil, "", time.Time{}, apperrors.ErrUnauthorized
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// ConfirmEmail validates a confirmation token and marks the account
// confirmed.
func (s *IdentityService) ConfirmEmail(ctx context.Context, userID primitive.ObjectID, token string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailConfirmed {
		return nil
	}
	if token == "" || user.ConfirmToken != token || time.Now().After(user.ConfirmExpires) {
		return apperrors.New(apperrors.KindAuth, "confirmation token is invalid or expired")
	}

	return s.users.Update(ctx, user.ID, bson.M{
		"email_confirmed": true,
		"confirm_token":   "",
	})
}

// SendConfirm re-issues a confirmation token and mails the link.
func (s *IdentityService) SendConfirm(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailConfirmed {
		return apperrors.Validation("email is already confirmed")
	}

	user.ConfirmToken = uuid.NewString()
	user.ConfirmExpires = time.Now().Add(confirmTokenTTL)
	if err := s.users.Update(ctx, user.ID, bson.M{
		"confirm_token":   user.ConfirmToken,
		"confirm_expires": user.ConfirmExpires,
	}); err != nil {
		return err
	}

	s.sendConfirmationMail(ctx, user)
	return nil
}

func (s *IdentityService) sendConfirmationMail(ctx context.Context, user *models.User) {
	link := fmt.Sprintf("%s?userId=%s&token=%s", s.confirmBase, user.ID.Hex(), user.ConfirmToken)
	body := fmt.Sprintf("Click this link to confirm your account: <a href=%q>%s</a>", link, link)

	if _, err := s.sender.Send(ctx, user.Email, "Confirm your account", body); err != nil {
		s.logger.Warn("confirmation email not delivered",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err))
	}
}

// ChangePassword verifies the old password before storing a new hash.
// A wrong old password leaves the credential unchanged.
func (s *IdentityService) ChangePassword(ctx context.Context, userID primitive.ObjectID, req models.ChangePasswordRequest) error {
	if strings.TrimSpace(req.OldPassword) == "" ||
		strings.TrimSpace(req.NewPassword) == "" ||
		strings.TrimSpace(req.NewPasswordConfirm) == "" {
		return apperrors.Validation("password fields must not be blank")
	}
	if req.NewPassword != req.NewPasswordConfirm {
		return apperrors.Validation("new password and confirmation do not match")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, req.OldPassword); err != nil {
		return apperrors.New(apperrors.KindAuth, "old password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, user.ID, bson.M{"password_hash": hash})
}

// EditUser applies partial contact updates; empty fields keep their
// current value.
func (s *IdentityService) EditUser(ctx context.Context, userID primitive.ObjectID, req models.EditUserRequest) (*models.User, error) {
	update := bson.M{}
	if req.FirstName != "" {
		update["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		update["last_name"] = req.LastName
	}
	if req.Email != "" {
		update["email"] = req.Email
		update["email_normalized"] = strings.ToLower(req.Email)
	}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}
	if len(update) == 0 {
		return nil, apperrors.Validation("no fields to update")
	}

	if err := s.users.Update(ctx, userID, update); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

// EditAddress merges non-empty address fields into the user's address.
func (s *IdentityService) EditAddress(ctx context.Context, userID primitive.ObjectID, req models.Address) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	address := models.Address{}
	if user.Address != nil {
		address = *user.Address
	}
	if req.Street != "" {
		address.Street = req.Street
	}
	if req.City != "" {
		address.City = req.City
	}
	if req.Country != "" {
		address.Country = req.Country
	}
	if req.PostCode != "" {
		address.PostCode = req.PostCode
	}
	if req.HouseNumber != "" {
		address.HouseNumber = req.HouseNumber
	}

	if err := s.users.Update(ctx, userID, bson.M{"address": address}); err != nil {
		return nil, err
	}
	user.Address = &address
	return user, nil
}
