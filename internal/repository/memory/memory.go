package memory

import (
	"LinkShield-Backend/internal/domain"
	"LinkShield-Backend/internal/repository"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStorage потокобезопасная in-memory реализация Storage для тестов
// и локального запуска без PostgreSQL.
type MemStorage struct {
	mu           sync.RWMutex
	linksByCode  map[string]*domain.Link
	linksByID    map[string]*domain.Link
	usersByEmail map[string]*domain.User
	usersByID    map[string]*domain.User
}

func New() *MemStorage {
	return &MemStorage{
		linksByCode:  make(map[string]*domain.Link),
		linksByID:    make(map[string]*domain.Link),
		usersByEmail: make(map[string]*domain.User),
		usersByID:    make(map[string]*domain.User),
	}
}

// --- User Methods ---

func (s *MemStorage) CreateUser(_ context.Context, email, passwordHash string, name *string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return nil, repository.ErrEmailExists
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.usersByEmail[email] = user
	s.usersByID[user.ID] = user

	return user, nil
}

func (s *MemStorage) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *MemStorage) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *MemStorage) UpdateUserRole(_ context.Context, id string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	return nil
}

func (s *MemStorage) ListUsers(_ context.Context, params repository.ListParams) (*repository.UserPage, error) {
	s.mu.RLock()
	users := make([]*domain.User, 0, len(s.usersByID))
	for _, u := range s.usersByID {
		users = append(users, u)
	}
	s.mu.RUnlock()

	return repository.ApplyUserQuery(users, params), nil
}

// --- Link Methods ---

func (s *MemStorage) SaveLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Уникальность короткого кода — как unique constraint в PostgreSQL
	if _, exists := s.linksByCode[link.ShortCode]; exists {
		return repository.ErrCodeExists
	}

	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	now := time.Now()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	link.UpdatedAt = now

	s.linksByCode[link.ShortCode] = link
	s.linksByID[link.ID] = link
	return nil
}

func (s *MemStorage) GetLinkByCode(_ context.Context, code string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.linksByCode[code]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}
	return link, nil
}

func (s *MemStorage) GetLinkByID(_ context.Context, id string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.linksByID[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

func (s *MemStorage) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.linksByCode[code]
	return exists, nil
}

func (s *MemStorage) CodeExistsExcept(_ context.Context, code, linkID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, exists := s.linksByCode[code]
	return exists && link.ID != linkID, nil
}

func (s *MemStorage) UpdateLinkCode(_ context.Context, id, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.linksByID[id]
	if !ok {
		return repository.ErrLinkNotFound
	}
	if existing, taken := s.linksByCode[code]; taken && existing.ID != id {
		return repository.ErrCodeExists
	}

	delete(s.linksByCode, link.ShortCode)
	link.ShortCode = code
	link.UpdatedAt = time.Now()
	s.linksByCode[code] = link
	return nil
}

func (s *MemStorage) IncrementClicks(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.linksByCode[code]
	if !ok {
		return repository.ErrCodeNotFound
	}
	link.Clicks++
	return nil
}

func (s *MemStorage) SetLinkFlag(_ context.Context, id string, flagged bool, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.linksByID[id]
	if !ok {
		return repository.ErrLinkNotFound
	}
	link.Flagged = flagged
	link.FlagReason = reason
	link.UpdatedAt = time.Now()
	return nil
}

func (s *MemStorage) DeleteLink(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.linksByID[id]
	if !ok {
		return repository.ErrLinkNotFound
	}
	delete(s.linksByID, id)
	delete(s.linksByCode, link.ShortCode)
	return nil
}

func (s *MemStorage) ListUserLinks(_ context.Context, userID string) ([]*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var links []*domain.Link
	for _, link := range s.linksByID {
		if link.OwnedBy(userID) {
			links = append(links, link)
		}
	}
	return links, nil
}

func (s *MemStorage) ListAllLinks(_ context.Context, params repository.ListParams) (*repository.LinkPage, error) {
	s.mu.RLock()
	rows := make([]*repository.LinkRow, 0, len(s.linksByID))
	for _, link := range s.linksByID {
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
		if link.UserID != nil {
			if owner, ok := s.usersByID[*link.UserID]; ok {
				row.UserName = owner.Name
				email := owner.Email
				row.UserEmail = &email
			}
		}
		rows = append(rows, row)
	}
	s.mu.RUnlock()

	return repository.ApplyLinkQuery(rows, params), nil
}
