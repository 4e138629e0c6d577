package models

import "time"

// User is a person allowed to sign in: staff manage the farm records,
// superusers additionally see unpublished posts and manage users.
type User struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Username     string        `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email        string        `gorm:"size:254" json:"email"`
	FirstName    string        `gorm:"size:150" json:"first_name"`
	LastName     string        `gorm:"size:150" json:"last_name"`
	PasswordHash string        `gorm:"column:password;size:128;not null" json:"-"`
	IsStaff      bool          `gorm:"not null" json:"is_staff"`
	IsSuperuser  bool          `gorm:"not null" json:"is_superuser"`
	IsActive     bool          `gorm:"not null" json:"is_active"`
	DateJoined   time.Time     `gorm:"autoCreateTime;<-:create" json:"date_joined"`
	LastLogin    *time.Time    `json:"last_login"`
	Settings     *UserSettings `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"settings,omitempty"`
}

func (User) TableName() string { return "users" }

// UserSettings holds per-user preferences; every user has exactly one row.
type UserSettings struct {
	TimeStamped
	UserID             uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	Timezone           string `gorm:"size:64;not null" json:"timezone" validate:"required,timezone"`
	EmailNotifications bool   `gorm:"not null" json:"email_notifications"`
}

func (UserSettings) TableName() string { return "user_settings" }

// DefaultUserSettings returns the row created alongside a new user.
func DefaultUserSettings(userID uint) UserSettings {
	return UserSettings{UserID: userID, Timezone: "UTC", EmailNotifications: true}
}
