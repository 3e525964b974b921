package repository

import (
	"context"
	"errors"
	"time"

	"linkshrink-backend/internal/domain"
)

var (
	ErrCodeNotFound = errors.New("short code not found")
	ErrCodeExists   = errors.New("short code already exists")
	ErrEmailTaken   = errors.New("email already taken")
)

// LinkStats bundles a link with its most recent clicks and daily aggregates.
type LinkStats struct {
	Link         *domain.Link
	RecentClicks []*domain.Click
	DailyClicks  []*domain.DailyStat
}

type Storage interface {
	// User methods
	CreateUser(ctx context.Context, email, passwordHash string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Link methods
	SaveLink(ctx context.Context, link *domain.Link) error
	GetLinkByCode(ctx context.Context, code string) (*domain.Link, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListUserLinks(ctx context.Context, userID int64) ([]*domain.Link, error)
	ListRecentUserLinks(ctx context.Context, userID int64, limit int) ([]*domain.Link, error)
	ToggleLinkActive(ctx context.Context, code string, userID int64) (*domain.Link, error)
	DeleteLink(ctx context.Context, code string, userID int64) error

	// Click methods
	InsertClick(ctx context.Context, click *domain.Click) error
	IncrementClicks(ctx context.Context, code string) error
	GetLinkStats(ctx context.Context, code string, recentLimit int) (*LinkStats, error)

	// Daily aggregation
	AggregateDailyStats(ctx context.Context, day time.Time) (int64, error)

	// Health
	Ping(ctx context.Context) error
}
