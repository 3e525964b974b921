package domain

import "time"

// Click is a single redirect event. Clicks are append-only and reference
// their link by short code without a foreign key, so click history survives
// link deletion.
type Click struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	ShortCode  string    `gorm:"column:short_code;size:10;not null;index" json:"short_code"`
	ClickedAt  time.Time `gorm:"column:clicked_at;autoCreateTime;index" json:"clicked_at"`
	IPAddress  *string   `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	UserAgent  *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	Referrer   *string   `gorm:"column:referrer;type:text" json:"referrer,omitempty"`
	DeviceType *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"`
}

// TableName returns the table name for GORM.
func (Click) TableName() string {
	return "clicks"
}
