package service

import (
	"LinkShield-Backend/internal/auth"
	"LinkShield-Backend/internal/domain"
	"LinkShield-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ModerationService админские переходы над помеченными ссылками и ролями
type ModerationService struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewModeration создает новый сервис модерации
func NewModeration(storage repository.Storage, log *zap.Logger) *ModerationService {
	return &ModerationService{
		storage: storage,
		log:     log,
	}
}

// authorize единая точка проверки прав. Все операции модерации проходят
// через нее, чтобы проверки не расходились между вызовами.
func authorize(sess *auth.Session, required domain.Role) error {
	if sess == nil {
		return ErrUnauthorized
	}
	if required == domain.RoleAdmin && sess.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// ApproveLink снимает флаг и причину с помеченной ссылки
func (s *ModerationService) ApproveLink(ctx context.Context, sess *auth.Session, linkID string) error {
	if err := authorize(sess, domain.RoleAdmin); err != nil {
		return err
	}

	if _, err := s.storage.GetLinkByID(ctx, linkID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get link: %w", err)
	}

	if err := s.storage.SetLinkFlag(ctx, linkID, false, nil); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to approve link: %w", err)
	}

	s.log.Info("approved flagged link",
		zap.String("link_id", linkID),
		zap.String("admin_id", sess.UserID))
	return nil
}

// RejectLink безвозвратно удаляет помеченную ссылку
func (s *ModerationService) RejectLink(ctx context.Context, sess *auth.Session, linkID string) error {
	if err := authorize(sess, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.storage.DeleteLink(ctx, linkID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete link: %w", err)
	}

	s.log.Info("rejected flagged link",
		zap.String("link_id", linkID),
		zap.String("admin_id", sess.UserID))
	return nil
}

// DeleteLink удаляет ссылку от имени владельца. Администратор может
// удалить любую ссылку, обычный пользователь — только свою.
func (s *ModerationService) DeleteLink(ctx context.Context, sess *auth.Session, linkID string) error {
	if err := authorize(sess, domain.RoleUser); err != nil {
		return err
	}

	link, err := s.storage.GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get link: %w", err)
	}

	if !sess.IsAdmin() && !link.OwnedBy(sess.UserID) {
		return ErrForbidden
	}

	if err := s.storage.DeleteLink(ctx, linkID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete link: %w", err)
	}

	s.log.Info("deleted link", zap.String("link_id", linkID), zap.String("user_id", sess.UserID))
	return nil
}

// SetUserRole меняет роль пользователя. Менять собственную роль запрещено.
func (s *ModerationService) SetUserRole(ctx context.Context, sess *auth.Session, userID string, role domain.Role) error {
	if err := authorize(sess, domain.RoleAdmin); err != nil {
		return err
	}
	if sess.UserID == userID {
		return ErrForbidden
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	if _, err := s.storage.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.storage.UpdateUserRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update user role: %w", err)
	}

	s.log.Info("updated user role",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("admin_id", sess.UserID))
	return nil
}

// ListAllLinks страница всех ссылок для админки
func (s *ModerationService) ListAllLinks(ctx context.Context, sess *auth.Session, params repository.ListParams) (*repository.LinkPage, error) {
	if err := authorize(sess, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.storage.ListAllLinks(ctx, params)
}

// ListUsers страница пользователей для админки
func (s *ModerationService) ListUsers(ctx context.Context, sess *auth.Session, params repository.ListParams) (*repository.UserPage, error) {
	if err := authorize(sess, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.storage.ListUsers(ctx, params)
}
