package model

import "time"

// Installation is one remote platform that reports statistics to the
// collector. The access token is issued on registration and never changes;
// client_uid deduplicates registration retries from the same client.
type InstallationModel struct {
	InstallationID   uint       `json:"installation_id" gorm:"column:installation_id;primaryKey"`
	AccessToken      string     `json:"access_token" gorm:"column:access_token;type:varchar(64);uniqueIndex;not null"`
	ClientUID        string     `json:"client_uid" gorm:"column:client_uid;type:varchar(64);uniqueIndex;not null"`
	PlatformName     string     `json:"platform_name" gorm:"column:platform_name;type:varchar(255)"`
	PlatformURL      string     `json:"platform_url" gorm:"column:platform_url;type:varchar(255)"`
	PlatformCityName string     `json:"platform_city_name" gorm:"column:platform_city_name;type:varchar(255)"`
	Latitude         *float64   `json:"latitude,omitempty" gorm:"column:latitude"`
	Longitude        *float64   `json:"longitude,omitempty" gorm:"column:longitude"`
	CreatedAt        time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty" gorm:"column:updated_at"`
}

func (InstallationModel) TableName() string {
	return "installations"
}
