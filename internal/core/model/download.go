package model

import "time"

// Download is one row of the download ledger. The (UserID, AutomationID)
// pair is unique; a repeated insert is reported as already downloaded.
type Download struct {
	ID           string      `json:"id" gorm:"primaryKey;size:36"`
	UserID       string      `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_downloads_user_automation"`
	AutomationID string      `json:"automation_id" gorm:"size:36;not null;uniqueIndex:idx_downloads_user_automation"`
	DownloadDate time.Time   `json:"download_date" gorm:"index"`
	Automation   *Automation `json:"automation,omitempty" gorm:"foreignKey:AutomationID"`
}

func (Download) TableName() string {
	return "downloads"
}

type SubscriptionStatus string

const SubscriptionFree SubscriptionStatus = "free"

type Profile struct {
	ID                 string             `json:"id" gorm:"primaryKey;size:64"`
	Name               string             `json:"name" gorm:"size:255"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status" gorm:"size:32;default:free"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

type DashboardStats struct {
	DownloadsThisMonth int        `json:"downloads_this_month"`
	TotalDownloads     int        `json:"total_downloads"`
	Subscription       string     `json:"subscription"`
	RecentDownloads    []Download `json:"recent_downloads"`
}
