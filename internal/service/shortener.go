package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"linkshrink-backend/internal/config"
	"linkshrink-backend/internal/domain"
	"linkshrink-backend/internal/repository"
	"linkshrink-backend/pkg/random"
)

var (
	// ErrGenerationExhausted is returned when no free short code was found
	// within the configured number of attempts. Callers must treat it as a
	// retryable server-side condition, not a client error.
	ErrGenerationExhausted = errors.New("short code generation exhausted")

	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid original url")
)

// Shortener allocates short codes and creates links.
type Shortener struct {
	storage repository.Storage
	config  *config.URLShortener
}

func NewShortener(storage repository.Storage, cfg *config.URLShortener) *Shortener {
	return &Shortener{
		storage: storage,
		config:  cfg,
	}
}

// CreateLink allocates a unique short code for the URL and persists the
// link. Codes are sampled uniformly at random; a collision simply burns one
// of the bounded attempts. With 62^6 possible codes, collisions are
// negligible at expected scale.
func (s *Shortener) CreateLink(ctx context.Context, originalURL string, ownerID *int64) (*domain.Link, error) {
	normalized, err := NormalizeURL(originalURL)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.config.MaxAttempts; attempt++ {
		code, err := random.NewRandomString(s.config.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}

		exists, err := s.storage.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check code existence: %w", err)
		}
		if exists {
			continue
		}

		link := &domain.Link{
			ShortCode:   code,
			OriginalURL: normalized,
			UserID:      ownerID,
			IsActive:    true,
		}

		err = s.storage.SaveLink(ctx, link)
		if errors.Is(err, repository.ErrCodeExists) {
			// Lost a race for the code; try another one.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save link: %w", err)
		}

		return link, nil
	}

	return nil, ErrGenerationExhausted
}

// ShortURL builds the public short URL for a code.
func (s *Shortener) ShortURL(code string) string {
	return s.config.BaseURL + "/" + code
}

// NormalizeURL validates that raw is an absolute http(s) URL and returns
// its canonical form. A URL without an explicit path gets a trailing "/",
// so "https://example.com" and "https://example.com/" shorten identically.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}
