package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"linkshrink-backend/internal/domain"
	"linkshrink-backend/internal/repository"
)

// Storage is an in-memory implementation of repository.Storage used in
// tests and for local development without a database.
type Storage struct {
	mu           sync.RWMutex
	links        map[string]*domain.Link
	clicks       map[string][]*domain.Click
	usersByEmail map[string]*domain.User
	dailyStats   map[string]map[string]*domain.DailyStat // code -> date -> stat
	userCounter  int64
	linkCounter  int64
	clickCounter int64
}

func New() *Storage {
	return &Storage{
		links:        make(map[string]*domain.Link),
		clicks:       make(map[string][]*domain.Click),
		usersByEmail: make(map[string]*domain.User),
		dailyStats:   make(map[string]map[string]*domain.DailyStat),
	}
}

// --- User Methods ---

func (s *Storage) CreateUser(_ context.Context, email, passwordHash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return nil, repository.ErrEmailTaken
	}

	s.userCounter++
	user := &domain.User{
		ID:           s.userCounter,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.usersByEmail[email] = user

	cp := *user
	return &cp, nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}

	cp := *user
	return &cp, nil
}

// --- Link Methods ---

func (s *Storage) SaveLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[link.ShortCode]; exists {
		return repository.ErrCodeExists
	}

	s.linkCounter++
	link.ID = s.linkCounter
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	cp := *link
	s.links[link.ShortCode] = &cp
	return nil
}

func (s *Storage) GetLinkByCode(_ context.Context, code string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[code]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}

	cp := *link
	return &cp, nil
}

func (s *Storage) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.links[code]
	return ok, nil
}

func (s *Storage) ListUserLinks(_ context.Context, userID int64) ([]*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var userLinks []*domain.Link
	for _, link := range s.links {
		if link.OwnedBy(userID) {
			cp := *link
			userLinks = append(userLinks, &cp)
		}
	}

	sort.Slice(userLinks, func(i, j int) bool {
		return userLinks[i].CreatedAt.After(userLinks[j].CreatedAt)
	})
	return userLinks, nil
}

func (s *Storage) ListRecentUserLinks(ctx context.Context, userID int64, limit int) ([]*domain.Link, error) {
	links, err := s.ListUserLinks(ctx, userID)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}
	return links, nil
}

func (s *Storage) ToggleLinkActive(_ context.Context, code string, userID int64) (*domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[code]
	if !ok || !link.OwnedBy(userID) {
		return nil, repository.ErrCodeNotFound
	}

	link.IsActive = !link.IsActive

	cp := *link
	return &cp, nil
}

func (s *Storage) DeleteLink(_ context.Context, code string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[code]
	if !ok || !link.OwnedBy(userID) {
		return repository.ErrCodeNotFound
	}

	// Click history is retained on purpose.
	delete(s.links, code)
	return nil
}

// --- Click Methods ---

func (s *Storage) InsertClick(_ context.Context, click *domain.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clickCounter++
	click.ID = s.clickCounter
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}

	cp := *click
	s.clicks[click.ShortCode] = append(s.clicks[click.ShortCode], &cp)
	return nil
}

func (s *Storage) IncrementClicks(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[code]
	if !ok {
		return repository.ErrCodeNotFound
	}

	now := time.Now()
	link.TotalClicks++
	link.LastClickedAt = &now
	return nil
}

func (s *Storage) GetLinkStats(_ context.Context, code string, recentLimit int) (*repository.LinkStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[code]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}

	all := s.clicks[code]
	recent := make([]*domain.Click, len(all))
	for i, c := range all {
		cp := *c
		recent[i] = &cp
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].ClickedAt.After(recent[j].ClickedAt)
	})
	if recentLimit > 0 && len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	var daily []*domain.DailyStat
	for _, stat := range s.dailyStats[code] {
		cp := *stat
		daily = append(daily, &cp)
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date.After(daily[j].Date)
	})

	linkCopy := *link
	return &repository.LinkStats{
		Link:         &linkCopy,
		RecentClicks: recent,
		DailyClicks:  daily,
	}, nil
}

// --- Daily Aggregation ---

func (s *Storage) AggregateDailyStats(_ context.Context, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	dateKey := dayStart.Format("2006-01-02")

	var written int64
	for code, clicks := range s.clicks {
		var count int64
		for _, c := range clicks {
			if !c.ClickedAt.Before(dayStart) && c.ClickedAt.Before(dayEnd) {
				count++
			}
		}
		if count == 0 {
			continue
		}

		if s.dailyStats[code] == nil {
			s.dailyStats[code] = make(map[string]*domain.DailyStat)
		}
		s.dailyStats[code][dateKey] = &domain.DailyStat{
			ShortCode: code,
			Date:      dayStart,
			Clicks:    count,
		}
		written++
	}

	return written, nil
}

// --- Health ---

func (s *Storage) Ping(_ context.Context) error {
	return nil
}
