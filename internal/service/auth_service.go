package service

import (
	"errors"
	"fmt"

	"wellbeing_backend/internal/config"
	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserStore interface {
	Create(user *model.User) error
	FindByUsername(username string) (*model.User, error)
	TouchLastLogin(userID uint) error
}

type AuthService struct {
	users UserStore
	cfg   *config.Config
}

func NewAuthService(users UserStore, cfg *config.Config) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

// Register creates a staff account with one of the three platform roles.
func (s *AuthService) Register(username, password, roleCode string) (*model.User, error) {
	if len(username) < 3 || len(username) > 50 {
		return nil, util.NewValidationError("user.username", "must be 3-50 characters")
	}
	if len(password) < 6 {
		return nil, util.NewValidationError("user.password", "must be at least 6 characters")
	}
	role, ok := model.ParseRole(roleCode)
	if !ok {
		return nil, util.NewValidationError("user.role", fmt.Sprintf("unrecognized role %q", roleCode))
	}

	if _, err := s.users.FindByUsername(username); err == nil {
		return nil, util.NewValidationError("user.username", "already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token carrying the role claim. The
// failure message never reveals whether the username or the password was
// wrong.
func (s *AuthService) Login(username, password string) (string, *model.User, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.NewAuthorizationError("auth.credentials", "invalid username or password")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.NewAuthorizationError("auth.credentials", "invalid username or password")
	}

	token, err := util.GenerateJWT(user, s.cfg.JWT.Secret, s.cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	if err := s.users.TouchLastLogin(user.ID); err != nil {
		return "", nil, err
	}
	return token, user, nil
}
