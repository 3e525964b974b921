package domain

import "time"

// DailyStat is an aggregated click count for one short code on one day,
// filled in by the scheduled aggregator.
type DailyStat struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	ShortCode string    `gorm:"column:short_code;size:10;not null;uniqueIndex:idx_daily_stats_code_date" json:"short_code"`
	Date      time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_daily_stats_code_date" json:"date"`
	Clicks    int64     `gorm:"column:clicks;not null;default:0" json:"clicks"`
}

// TableName returns the table name for GORM.
func (DailyStat) TableName() string {
	return "daily_stats"
}
