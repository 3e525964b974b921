package domain

import "time"

// Link maps a short code to an original URL. ShortCode is globally unique
// and never changes once assigned. TotalClicks and LastClickedAt are only
// mutated by the click recorder.
type Link struct {
	ID            int64      `gorm:"primaryKey;column:id" json:"id"`
	ShortCode     string     `gorm:"column:short_code;uniqueIndex;size:10;not null" json:"short_code"`
	OriginalURL   string     `gorm:"column:original_url;type:text;not null" json:"original_url"`
	UserID        *int64     `gorm:"column:user_id;index" json:"user_id,omitempty"`
	IsActive      bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	TotalClicks   int64      `gorm:"column:total_clicks;not null;default:0" json:"total_clicks"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	LastClickedAt *time.Time `gorm:"column:last_clicked_at" json:"last_clicked_at,omitempty"`
}

// TableName returns the table name for GORM.
func (Link) TableName() string {
	return "links"
}

// OwnedBy reports whether the link belongs to the given user.
func (l *Link) OwnedBy(userID int64) bool {
	return l.UserID != nil && *l.UserID == userID
}
