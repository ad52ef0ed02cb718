package postgres

import (
	"LinkShield-Backend/internal/domain"
	"LinkShield-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- User Methods ---

// CreateUser создает нового пользователя с ролью USER
func (s *PostgresStorage) CreateUser(ctx context.Context, email, passwordHash string, name *string) (*domain.User, error) {
	user := domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         domain.RoleUser,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, repository.ErrEmailExists
		}
		s.log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("created new user", zap.String("user_id", user.ID), zap.String("email", email))
	return &user, nil
}

// GetUserByEmail получает пользователя по email
func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetUserByID получает пользователя по ID
func (s *PostgresStorage) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by id", zap.String("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// UpdateUserRole меняет роль пользователя
func (s *PostgresStorage) UpdateUserRole(ctx context.Context, id string, role domain.Role) error {
	result := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		s.log.Error("failed to update user role", zap.String("user_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to update user role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	s.log.Info("updated user role", zap.String("user_id", id), zap.String("role", string(role)))
	return nil
}

// ListUsers возвращает страницу пользователей для админки.
// Выборка и фильтрация повторяют пайплайн ApplyUserQuery.
func (s *PostgresStorage) ListUsers(ctx context.Context, params repository.ListParams) (*repository.UserPage, error) {
	var users []*domain.User

	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		s.log.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return repository.ApplyUserQuery(users, params), nil
}

// --- Link Methods ---

// SaveLink сохраняет новую ссылку. Нарушение уникальности короткого кода
// (в том числе при гонке после предварительной проверки) возвращается как
// ErrCodeExists, чтобы оркестратор мог перегенерировать код.
func (s *PostgresStorage) SaveLink(ctx context.Context, link *domain.Link) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrCodeExists
		}
		s.log.Error("failed to save link", zap.String("short_code", link.ShortCode), zap.Error(err))
		return fmt.Errorf("failed to save link: %w", err)
	}

	s.log.Info("saved new link",
		zap.String("short_code", link.ShortCode),
		zap.Bool("flagged", link.Flagged))
	return nil
}

// GetLinkByCode получает ссылку по короткому коду
func (s *PostgresStorage) GetLinkByCode(ctx context.Context, code string) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrCodeNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.String("short_code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

// GetLinkByID получает ссылку по ID
func (s *PostgresStorage) GetLinkByID(ctx context.Context, id string) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link by id", zap.String("link_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

// CodeExists проверяет, занят ли короткий код
func (s *PostgresStorage) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Link{}).Where("short_code = ?", code).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check code existence", zap.String("short_code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check code: %w", err)
	}

	return count > 0, nil
}

// CodeExistsExcept проверяет занятость кода, исключая саму ссылку
func (s *PostgresStorage) CodeExistsExcept(ctx context.Context, code, linkID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("short_code = ? AND id <> ?", code, linkID).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check code existence", zap.String("short_code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check code: %w", err)
	}

	return count > 0, nil
}

// UpdateLinkCode меняет короткий код ссылки
func (s *PostgresStorage) UpdateLinkCode(ctx context.Context, id, code string) error {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).Where("id = ?", id).Update("short_code", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return repository.ErrCodeExists
		}
		s.log.Error("failed to update link code", zap.String("link_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to update link code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	s.log.Info("updated link code", zap.String("link_id", id), zap.String("short_code", code))
	return nil
}

// IncrementClicks атомарно увеличивает счетчик переходов
func (s *PostgresStorage) IncrementClicks(ctx context.Context, code string) error {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("short_code = ?", code).
		Update("clicks", gorm.Expr("clicks + 1"))
	if result.Error != nil {
		s.log.Error("failed to increment clicks", zap.String("short_code", code), zap.Error(result.Error))
		return fmt.Errorf("failed to increment clicks: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrCodeNotFound
	}

	return nil
}

// SetLinkFlag устанавливает или снимает флаг ссылки
func (s *PostgresStorage) SetLinkFlag(ctx context.Context, id string, flagged bool, reason *string) error {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"flagged":     flagged,
			"flag_reason": reason,
		})
	if result.Error != nil {
		s.log.Error("failed to set link flag", zap.String("link_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to set link flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	s.log.Info("set link flag", zap.String("link_id", id), zap.Bool("flagged", flagged))
	return nil
}

// DeleteLink удаляет ссылку безвозвратно
func (s *PostgresStorage) DeleteLink(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Link{})
	if result.Error != nil {
		s.log.Error("failed to delete link", zap.String("link_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	s.log.Info("deleted link", zap.String("link_id", id))
	return nil
}

// ListUserLinks возвращает список ссылок пользователя
func (s *PostgresStorage) ListUserLinks(ctx context.Context, userID string) ([]*domain.Link, error) {
	var links []*domain.Link

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&links).Error
	if err != nil {
		s.log.Error("failed to list user links", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list user links: %w", err)
	}

	return links, nil
}

// ListAllLinks возвращает страницу всех ссылок с владельцами для админки
func (s *PostgresStorage) ListAllLinks(ctx context.Context, params repository.ListParams) (*repository.LinkPage, error) {
	var links []*domain.Link

	if err := s.db.WithContext(ctx).Preload("User").Find(&links).Error; err != nil {
		s.log.Error("failed to list all links", zap.Error(err))
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	rows := make([]*repository.LinkRow, len(links))
	for i, link := range links {
		row := &repository.LinkRow{
			ID:          link.ID,
			OriginalURL: link.OriginalURL,
			ShortCode:   link.ShortCode,
			Clicks:      link.Clicks,
			UserID:      link.UserID,
			Flagged:     link.Flagged,
			FlagReason:  link.FlagReason,
			CreatedAt:   link.CreatedAt,
		}
		if link.User != nil {
			row.UserName = link.User.Name
			email := link.User.Email
			row.UserEmail = &email
		}
		rows[i] = row
	}

	return repository.ApplyLinkQuery(rows, params), nil
}
