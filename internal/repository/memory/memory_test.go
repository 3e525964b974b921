package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkshrink-backend/internal/domain"
	"linkshrink-backend/internal/repository"
)

func saveLink(t *testing.T, s *Storage, code string, userID *int64, createdAt time.Time) {
	t.Helper()
	require.NoError(t, s.SaveLink(context.Background(), &domain.Link{
		ShortCode:   code,
		OriginalURL: "https://example.com/",
		UserID:      userID,
		IsActive:    true,
		CreatedAt:   createdAt,
	}))
}

func TestStorage_SaveAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	saveLink(t, s, "abc123", nil, time.Now())

	link, err := s.GetLinkByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", link.OriginalURL)

	err = s.SaveLink(ctx, &domain.Link{ShortCode: "abc123", OriginalURL: "https://other.example/"})
	assert.ErrorIs(t, err, repository.ErrCodeExists)

	_, err = s.GetLinkByCode(ctx, "zzZZ99")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
}

// Returned links are copies; mutating them must not leak into storage.
func TestStorage_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	saveLink(t, s, "abc123", nil, time.Now())

	link, err := s.GetLinkByCode(ctx, "abc123")
	require.NoError(t, err)
	link.OriginalURL = "https://mutated.example/"

	again, err := s.GetLinkByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", again.OriginalURL)
}

func TestStorage_OwnershipMismatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	ownerID := int64(1)
	saveLink(t, s, "abc123", &ownerID, time.Now())

	_, err := s.ToggleLinkActive(ctx, "abc123", 2)
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
	assert.ErrorIs(t, s.DeleteLink(ctx, "abc123", 2), repository.ErrCodeNotFound)

	// Anonymous links have no owner and cannot be mutated by anyone.
	saveLink(t, s, "anon99", nil, time.Now())
	_, err = s.ToggleLinkActive(ctx, "anon99", 1)
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
}

func TestStorage_ListUserLinksNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	userID := int64(1)
	base := time.Now()
	for i := 0; i < 5; i++ {
		saveLink(t, s, fmt.Sprintf("code%02d", i), &userID, base.Add(time.Duration(i)*time.Second))
	}

	links, err := s.ListUserLinks(ctx, userID)
	require.NoError(t, err)
	require.Len(t, links, 5)
	assert.Equal(t, "code04", links[0].ShortCode)
	assert.Equal(t, "code00", links[4].ShortCode)

	recent, err := s.ListRecentUserLinks(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "code04", recent[0].ShortCode)
}

func TestStorage_DeleteRetainsClicks(t *testing.T) {
	s := New()
	ctx := context.Background()

	ownerID := int64(1)
	saveLink(t, s, "abc123", &ownerID, time.Now())
	require.NoError(t, s.InsertClick(ctx, &domain.Click{ShortCode: "abc123", ClickedAt: time.Now()}))

	require.NoError(t, s.DeleteLink(ctx, "abc123", ownerID))

	_, err := s.GetLinkByCode(ctx, "abc123")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
	assert.Len(t, s.clicks["abc123"], 1)
}

func TestStorage_Users(t *testing.T) {
	s := New()
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "user@example.com", "hash")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	_, err = s.CreateUser(ctx, "user@example.com", "other")
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	found, err := s.GetUserByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}
