package repository

import (
	"LinkShield-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrCodeNotFound = errors.New("short code not found")
	ErrCodeExists   = errors.New("short code already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrLinkNotFound = errors.New("link not found")
)

// ListParams holds pagination, search, sort and filter parameters for admin
// table views. Zero values fall back to the defaults from NormalizeListParams.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string // "asc" | "desc"
	FilterBy  string // "all" | "flagged" | "security" | "inappropriate" | "other"
}

// LinkRow is a Link joined with its owner for the admin view.
type LinkRow struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	Clicks      int64     `json:"clicks"`
	UserID      *string   `json:"user_id,omitempty"`
	UserName    *string   `json:"user_name,omitempty"`
	UserEmail   *string   `json:"user_email,omitempty"`
	Flagged     bool      `json:"flagged"`
	FlagReason  *string   `json:"flag_reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LinkPage is one page of the admin link listing. Total counts rows after
// search/filter, before pagination.
type LinkPage struct {
	Links []*LinkRow `json:"urls"`
	Total int        `json:"total_urls"`
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users []*domain.User `json:"users"`
	Total int            `json:"total_users"`
}

type Storage interface {
	// User methods
	CreateUser(ctx context.Context, email, passwordHash string, name *string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	UpdateUserRole(ctx context.Context, id string, role domain.Role) error
	ListUsers(ctx context.Context, params ListParams) (*UserPage, error)

	// Link methods
	SaveLink(ctx context.Context, link *domain.Link) error
	GetLinkByCode(ctx context.Context, code string) (*domain.Link, error)
	GetLinkByID(ctx context.Context, id string) (*domain.Link, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	CodeExistsExcept(ctx context.Context, code, linkID string) (bool, error)
	UpdateLinkCode(ctx context.Context, id, code string) error
	IncrementClicks(ctx context.Context, code string) error
	SetLinkFlag(ctx context.Context, id string, flagged bool, reason *string) error
	DeleteLink(ctx context.Context, id string) error
	ListUserLinks(ctx context.Context, userID string) ([]*domain.Link, error)
	ListAllLinks(ctx context.Context, params ListParams) (*LinkPage, error)
}
