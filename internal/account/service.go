package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/repository"
)

// Service отвечает за регистрацию, вход и профиль пользователя.
// Пароли хранятся как есть: сервис не претендует на безопасность.
type Service struct {
	repos  *repository.Repositories
	logger *slog.Logger
}

func NewService(repos *repository.Repositories, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repos: repos, logger: logger}
}

func validateCredentials(username, password string) (string, string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", "", fmt.Errorf("username and password: %w", domain.ErrEmptyInput)
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return "", "", domain.ErrInvalidUsername
	}
	return username, password, nil
}

// Register создает пользователя и сразу выполняет вход.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username, password, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Username: username, Password: password, DisplayName: username}
	err = s.repos.Users.Update(ctx, func(users map[string]*domain.User) error {
		if _, ok := users[username]; ok {
			return domain.ErrUserExists
		}
		users[username] = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.repos.Session.SetCurrent(ctx, username); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	s.logger.Info("user registered", "username", username)
	return user, nil
}

// Login проверяет пароль и делает пользователя текущим.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username, password, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	users, err := s.repos.Users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	user, ok := users[username]
	if !ok || user.Password != password {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.repos.Session.SetCurrent(ctx, username); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	s.logger.Info("user logged in", "username", username)
	return user, nil
}

// Logout завершает текущую сессию.
func (s *Service) Logout(ctx context.Context) error {
	return s.repos.Session.SetCurrent(ctx, "")
}

// Profile возвращает профиль пользователя. Для неизвестного имени
// возвращается запись с отображаемым именем, равным username.
func (s *Service) Profile(ctx context.Context, username string) (*domain.User, error) {
	users, err := s.repos.Users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	if u, ok := users[username]; ok {
		if u.DisplayName == "" {
			u.DisplayName = username
		}
		return u, nil
	}
	return &domain.User{Username: username, DisplayName: username}, nil
}

// SaveProfile обновляет отображаемое имя и описание текущего пользователя.
// Пустое имя заменяется на username.
func (s *Service) SaveProfile(ctx context.Context, sess domain.Session, displayName, bio string) (*domain.User, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	var saved *domain.User
	err := s.repos.Users.Update(ctx, func(users map[string]*domain.User) error {
		u, ok := users[sess.Username]
		if !ok {
			u = &domain.User{Username: sess.Username}
			users[sess.Username] = u
		}
		u.DisplayName = strings.TrimSpace(displayName)
		if u.DisplayName == "" {
			u.DisplayName = sess.Username
		}
		u.Bio = strings.TrimSpace(bio)
		saved = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return saved, nil
}

// Restore возвращает сохраненную сессию. Если пользователь сессии
// отсутствует в хранилище, для него создается минимальная запись.
func (s *Service) Restore(ctx context.Context) (domain.Session, error) {
	sess, err := s.repos.Session.Current(ctx)
	if err != nil || !sess.Authenticated() {
		return sess, err
	}

	err = s.repos.Users.Update(ctx, func(users map[string]*domain.User) error {
		if _, ok := users[sess.Username]; !ok {
			s.logger.Warn("session user is missing, creating a minimal record", "username", sess.Username)
			users[sess.Username] = &domain.User{Username: sess.Username, DisplayName: sess.Username}
		}
		return nil
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to restore session: %w", err)
	}
	return sess, nil
}
