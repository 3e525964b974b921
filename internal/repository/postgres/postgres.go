package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"linkshrink-backend/internal/domain"
	"linkshrink-backend/internal/repository"
)

// Storage implements the repository.Storage interface for PostgreSQL.
type Storage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates a new PostgreSQL storage instance.
func New(db *gorm.DB, log *zap.Logger) *Storage {
	return &Storage{
		db:  db,
		log: log,
	}
}

// --- User Methods ---

// CreateUser creates a new user with the given email and credential hash.
func (s *Storage) CreateUser(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		s.log.Error("failed to check email existence", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, repository.ErrEmailTaken
	}

	user := domain.User{
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Concurrent registration can still hit the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, repository.ErrEmailTaken
		}
		s.log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("created new user", zap.Int64("user_id", user.ID))
	return &user, nil
}

// GetUserByEmail fetches a user by email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User

	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrCodeNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// --- Link Methods ---

// SaveLink persists a new link.
func (s *Storage) SaveLink(ctx context.Context, link *domain.Link) error {
	exists, err := s.CodeExists(ctx, link.ShortCode)
	if err != nil {
		return err
	}
	if exists {
		return repository.ErrCodeExists
	}

	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrCodeExists
		}
		s.log.Error("failed to save link", zap.String("short_code", link.ShortCode), zap.Error(err))
		return fmt.Errorf("failed to save link: %w", err)
	}

	s.log.Info("saved new link", zap.String("short_code", link.ShortCode))
	return nil
}

// GetLinkByCode fetches a link by short code. Deactivated links are
// returned as well; the caller decides how to respond to them.
func (s *Storage) GetLinkByCode(ctx context.Context, code string) (*domain.Link, error) {
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

// CodeExists reports whether a short code is already taken.
func (s *Storage) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Link{}).Where("short_code = ?", code).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check code existence", zap.String("short_code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check code: %w", err)
	}

	return count > 0, nil
}

// ListUserLinks returns all links owned by the user, newest first.
func (s *Storage) ListUserLinks(ctx context.Context, userID int64) ([]*domain.Link, error) {
	var links []*domain.Link

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&links).Error
	if err != nil {
		s.log.Error("failed to list user links", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list user links: %w", err)
	}

	return links, nil
}

// ListRecentUserLinks returns up to limit most recently created links.
func (s *Storage) ListRecentUserLinks(ctx context.Context, userID int64, limit int) ([]*domain.Link, error) {
	var links []*domain.Link

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&links).Error
	if err != nil {
		s.log.Error("failed to list recent user links", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list recent user links: %w", err)
	}

	return links, nil
}

// ToggleLinkActive flips is_active for a link owned by the user. A missing
// code and an ownership mismatch are indistinguishable to the caller.
func (s *Storage) ToggleLinkActive(ctx context.Context, code string, userID int64) (*domain.Link, error) {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("short_code = ? AND user_id = ?", code, userID).
		Update("is_active", gorm.Expr("NOT is_active"))
	if result.Error != nil {
		s.log.Error("failed to toggle link", zap.String("short_code", code), zap.Error(result.Error))
		return nil, fmt.Errorf("failed to toggle link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrCodeNotFound
	}

	link, err := s.GetLinkByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	s.log.Info("toggled link", zap.String("short_code", code), zap.Bool("is_active", link.IsActive))
	return link, nil
}

// DeleteLink removes a link owned by the user. Click history is retained
// intentionally; clicks reference links by short code without a foreign key.
func (s *Storage) DeleteLink(ctx context.Context, code string, userID int64) error {
	result := s.db.WithContext(ctx).
		Where("short_code = ? AND user_id = ?", code, userID).
		Delete(&domain.Link{})
	if result.Error != nil {
		s.log.Error("failed to delete link", zap.String("short_code", code), zap.Error(result.Error))
		return fmt.Errorf("failed to delete link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrCodeNotFound
	}

	s.log.Info("deleted link", zap.String("short_code", code), zap.Int64("user_id", userID))
	return nil
}

// --- Click Methods ---

// InsertClick appends a click record.
func (s *Storage) InsertClick(ctx context.Context, click *domain.Click) error {
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		s.log.Error("failed to insert click", zap.String("short_code", click.ShortCode), zap.Error(err))
		return fmt.Errorf("failed to insert click: %w", err)
	}

	return nil
}

// IncrementClicks bumps total_clicks and stamps last_clicked_at in a single
// UPDATE, which keeps concurrent redirects for the same code safe.
func (s *Storage) IncrementClicks(ctx context.Context, code string) error {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("short_code = ?", code).
		UpdateColumns(map[string]interface{}{
			"total_clicks":    gorm.Expr("total_clicks + 1"),
			"last_clicked_at": time.Now(),
		})
	if result.Error != nil {
		s.log.Error("failed to increment clicks", zap.String("short_code", code), zap.Error(result.Error))
		return fmt.Errorf("failed to increment clicks: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrCodeNotFound
	}

	return nil
}

// GetLinkStats returns a link together with its most recent clicks and the
// last 30 daily aggregates.
func (s *Storage) GetLinkStats(ctx context.Context, code string, recentLimit int) (*repository.LinkStats, error) {
	link, err := s.GetLinkByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	var clicks []*domain.Click
	err = s.db.WithContext(ctx).Where("short_code = ?", code).
		Order("clicked_at DESC").Limit(recentLimit).Find(&clicks).Error
	if err != nil {
		s.log.Error("failed to list recent clicks", zap.String("short_code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to list recent clicks: %w", err)
	}

	var daily []*domain.DailyStat
	err = s.db.WithContext(ctx).Where("short_code = ?", code).
		Order("date DESC").Limit(30).Find(&daily).Error
	if err != nil {
		s.log.Error("failed to list daily stats", zap.String("short_code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}

	return &repository.LinkStats{
		Link:         link,
		RecentClicks: clicks,
		DailyClicks:  daily,
	}, nil
}

// --- Daily Aggregation ---

// AggregateDailyStats upserts per-code click counts for the given day and
// returns the number of rows written.
func (s *Storage) AggregateDailyStats(ctx context.Context, day time.Time) (int64, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	result := s.db.WithContext(ctx).Exec(`
		INSERT INTO daily_stats (short_code, date, clicks)
		SELECT short_code, ?::date, count(*)
		FROM clicks
		WHERE clicked_at >= ? AND clicked_at < ?
		GROUP BY short_code
		ON CONFLICT (short_code, date) DO UPDATE SET clicks = EXCLUDED.clicks`,
		dayStart, dayStart, dayEnd)
	if result.Error != nil {
		s.log.Error("failed to aggregate daily stats", zap.Time("day", dayStart), zap.Error(result.Error))
		return 0, fmt.Errorf("failed to aggregate daily stats: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// --- Health ---

// Ping checks database connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
