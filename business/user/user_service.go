package user

import (
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"campusEvents/pkg/utils"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint) error
	UpdateEmailVerification(ctx context.Context, id uint, isVerified bool) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, message string) error
}

// TokenRepository stores the server-side session behind each JWT.
type TokenRepository interface {
	StoreToken(ctx context.Context, session domain.Session, ttl time.Duration) error
	GetTokenData(ctx context.Context, userID string) (*domain.Session, error)
	ValidateToken(ctx context.Context, token string) (string, error)
	DeleteToken(ctx context.Context, userID, token string) error
}

type userService struct {
	userRepo                UserRepository
	validate                *validator.Validate
	notifRepo               NotificationRepository
	tokenRepo               TokenRepository
	appEmailVerificationKey string
	appDeploymentUrl        string
	now                     func() time.Time
}

const (
	verificationCodeTTL      = 15
	maxInterests             = 20
	SubjectRegisterAccount   = "Activate your campus events account"
	EmailBodyRegisterAccount = `Hi %v, activate your account by opening the link below</br></br>%v</br>note: the link is valid for %v minutes`
)

var errInvalidVerificationURL = fmt.Errorf("%w: invalid or expired url", domain.ErrValidation)

func NewUserService(
	userRepo UserRepository,
	validate *validator.Validate,
	notifRepo NotificationRepository,
	tokenRepo TokenRepository,
	appEmailVerificationKey string,
	appDeploymentUrl string,
) *userService {
	return &userService{
		userRepo:                userRepo,
		validate:                validate,
		notifRepo:               notifRepo,
		tokenRepo:               tokenRepo,
		appEmailVerificationKey: appEmailVerificationKey,
		appDeploymentUrl:        appDeploymentUrl,
		now:                     time.Now,
	}
}

var selfServiceRoles = map[string]bool{
	domain.RoleStudent:   true,
	domain.RoleOrganiser: true,
}

// NormalizeInterests lowercases, trims and dedupes interest tags, keeping the first occurrence.
func NormalizeInterests(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *userService) Register(ctx context.Context, user *domain.User) (domain.User, error) {
	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.User{}, fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}

	if err := s.validate.Var(user.Password, "required,min=6"); err != nil {
		logger.Error("Invalid user password", err)
		return domain.User{}, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	role := user.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if !selfServiceRoles[role] {
		return domain.User{}, fmt.Errorf("%w: invalid role", domain.ErrValidation)
	}

	interests := NormalizeInterests(user.Interests)
	if len(interests) > maxInterests {
		return domain.User{}, fmt.Errorf("%w: at most %d interests", domain.ErrValidation, maxInterests)
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err == nil && existingUser.ID > 0 {
		logger.Error("Email already exists")
		return domain.User{}, fmt.Errorf("%w: email already exists", domain.ErrConflict)
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	newUser := domain.User{
		FullName:   user.FullName,
		Email:      user.Email,
		Password:   string(passwordHash),
		IsVerified: false,
		Role:       role,
		Interests:  interests,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	activationLink, err := s.verificationLink(newUser.Email)
	if err != nil {
		logger.Error("Failed to build verification link", err)
		return domain.User{}, err
	}

	err = s.notifRepo.SendEmail(ctx, newUser.FullName, newUser.Email, SubjectRegisterAccount,
		fmt.Sprintf(EmailBodyRegisterAccount, newUser.FullName, activationLink, verificationCodeTTL))
	if err != nil {
		logger.Warn("Failed to send verification email", "user_id", newUser.ID, "error", err)
	}

	newUser.Password = ""
	return newUser, nil
}

func (s *userService) verificationLink(email string) (string, error) {
	expAt := s.now().Add(verificationCodeTTL * time.Minute).Unix()

	verificationCode := fmt.Sprintf("%v|%v", email, expAt)
	verificationCodeEncrypt, err := goshortcute.AESCBCEncrypt([]byte(verificationCode), []byte(s.appEmailVerificationKey))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt verification code: %w", err)
	}
	strEncode := goshortcute.StringtoBase64Encode(verificationCodeEncrypt)

	return s.appDeploymentUrl + "/api/v1/users/email-verification/" + strEncode, nil
}

func (s *userService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Invalid user credentials", err)
		return "", domain.User{}, errors.New("invalid email or password")
	}

	if !utils.CheckPassword(password, user.Password) {
		logger.Error("User password incorrect", "user_id", user.ID)
		return "", domain.User{}, errors.New("invalid email or password")
	}

	if !user.IsVerified {
		logger.Error("Email address has not been verified", "user_id", user.ID)
		return "", domain.User{}, errors.New("email address has not been verified")
	}

	token, err := s.issueToken(ctx, user, ipAddress, userAgent)
	if err != nil {
		return "", domain.User{}, err
	}

	user.Password = ""
	return token, user, nil
}

func (s *userService) issueToken(ctx context.Context, user domain.User, ipAddress, userAgent string) (string, error) {
	userIdStr := strconv.FormatUint(uint64(user.ID), 10)
	token, err := utils.GenerateJWT(userIdStr, user.Role)
	if err != nil {
		logger.Error("Failed to generated token", err)
		return "", errors.New("failed to generate token")
	}

	ttl := utils.TokenTTL()
	issuedAt := s.now()
	session := domain.Session{
		UserID:    userIdStr,
		Role:      user.Role,
		Token:     token,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := s.tokenRepo.StoreToken(ctx, session, ttl); err != nil {
		logger.Error("Failed to store session", err)
		return "", errors.New("failed to store session")
	}

	return token, nil
}

func (s *userService) ValidateTokenFromRedis(ctx context.Context, token string) (string, error) {
	return s.tokenRepo.ValidateToken(ctx, token)
}

// RefreshToken swaps a live token for a new one. The old token stops validating.
func (s *userService) RefreshToken(ctx context.Context, oldToken, ipAddress, userAgent string) (string, domain.User, error) {
	userIdStr, err := s.tokenRepo.ValidateToken(ctx, oldToken)
	if err != nil {
		logger.Error("Refresh with unknown token", err)
		return "", domain.User{}, errors.New("token expired or invalid")
	}

	id, err := strconv.ParseUint(userIdStr, 10, 64)
	if err != nil {
		return "", domain.User{}, errors.New("token expired or invalid")
	}

	user, err := s.userRepo.FindByID(ctx, uint(id))
	if err != nil {
		logger.Error("Refresh for missing user", err)
		return "", domain.User{}, errors.New("token expired or invalid")
	}

	token, err := s.issueToken(ctx, user, ipAddress, userAgent)
	if err != nil {
		return "", domain.User{}, err
	}

	user.Password = ""
	return token, user, nil
}

func (s *userService) Logout(ctx context.Context, userID uint, token string) error {
	if err := s.tokenRepo.DeleteToken(ctx, strconv.FormatUint(uint64(userID), 10), token); err != nil {
		logger.Error("Failed to delete session", err)
		return err
	}
	return nil
}

func (s *userService) VerifyEmail(ctx context.Context, verificationCodeEncrypt string) error {
	strDecode := goshortcute.StringtoBase64Decode(verificationCodeEncrypt)
	verificationCodeDecrypt, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.appEmailVerificationKey))
	if err != nil {
		logger.Error("Verifying email error", err)
		return errInvalidVerificationURL
	}

	verificationCode := strings.Split(verificationCodeDecrypt, "|")
	if len(verificationCode) != 2 {
		logger.Error("Verifying email error", "code", verificationCodeDecrypt)
		return errInvalidVerificationURL
	}

	email := verificationCode[0]
	ts, err := strconv.ParseInt(verificationCode[1], 10, 64)
	if err != nil {
		logger.Error("Verifying email error", "code", verificationCodeDecrypt)
		return errInvalidVerificationURL
	}
	if s.now().After(time.Unix(ts, 0)) {
		return errInvalidVerificationURL
	}

	getUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Verifying email error", err)
		return err
	}

	if getUser.IsVerified {
		logger.Warn("verify email err", "error", "email verified already")
		return errInvalidVerificationURL
	}

	if err := s.userRepo.UpdateEmailVerification(ctx, getUser.ID, true); err != nil {
		logger.Error("Verify email err", err)
		return err
	}

	return nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

// GetAllUsers retrieves all users
func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to get all users", err)
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}

	return users, nil
}

// UpdateInput carries the fields a user may change on their own profile.
// A nil Interests leaves them untouched; an empty slice clears them.
type UpdateInput struct {
	FullName  string
	Password  string
	Interests *[]string
}

// UpdateUser updates user information
func (s *userService) UpdateUser(ctx context.Context, id uint, input UpdateInput) (domain.User, error) {
	existingUser, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("User not found for update", err)
		return domain.User{}, err
	}

	if input.FullName != "" {
		existingUser.FullName = input.FullName
	}

	if input.Password != "" {
		if err := s.validate.Var(input.Password, "required,min=6"); err != nil {
			logger.Error("Invalid password", err)
			return domain.User{}, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
		}

		passwordHash, err := utils.HashPassword(input.Password)
		if err != nil {
			logger.Error("Failed to hash password", err)
			return domain.User{}, errors.New("failed to hash password")
		}
		existingUser.Password = string(passwordHash)
	}

	if input.Interests != nil {
		interests := NormalizeInterests(*input.Interests)
		if len(interests) > maxInterests {
			return domain.User{}, fmt.Errorf("%w: at most %d interests", domain.ErrValidation, maxInterests)
		}
		existingUser.Interests = interests
	}

	if err := s.userRepo.Update(ctx, &existingUser); err != nil {
		logger.Error("Failed to update user", err)
		return domain.User{}, err
	}

	existingUser.Password = ""
	return existingUser, nil
}

// DeleteUser soft deletes a user
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		logger.Error("User not found for deletion", err)
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete user", err)
		return err
	}

	return nil
}
