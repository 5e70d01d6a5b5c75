package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BadgeDownloadLog is an append-only audit record of badge downloads.
// Rows are never updated or deleted, and they outlive the registration
// they were written for.
type BadgeDownloadLog struct {
	bun.BaseModel `bun:"table:badge_download_logs"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID    string    `bun:"user_id" json:"user_id"`
	EventID   string    `bun:"event_id" json:"event_id"`
	IPAddress string    `bun:"ip_address" json:"ip_address"`
	UserAgent string    `bun:"user_agent" json:"user_agent"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
}
