package models

import "time"

type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name         string
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string
	NationalID   string `gorm:"uniqueIndex;not null"` // normalized, e.g. V-12345678
	Phone        string
	Role         string // member | admin

	// Membership is activated by payment approval, never by the booking core.
	MembershipStatus    string // inactive | pending_payment | active
	MembershipExpiresAt *time.Time

	TelegramChatID int64
}

// ClassOccurrence is a recurring weekly slot, not a calendar instance.
// BookedCount is only ever mutated through the booking/cancel transactions.
type ClassOccurrence struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Weekday        int    `gorm:"index"` // time.Weekday, Sunday = 0
	StartTime      string // "07:00"
	Name           string
	InstructorName string
	Capacity       int
	BookedCount    int
	Unlimited      bool
	SpecialDate    *time.Time // set for one-off variants
	Special        bool
}

// Attendee existence is the sole source of truth for "is this user booked".
// The composite unique index enforces one seat per user per class.
type Attendee struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ClassID uint `gorm:"uniqueIndex:idx_attendee_class_user"`
	UserID  uint `gorm:"uniqueIndex:idx_attendee_class_user"`
	Name    string
	Email   string

	Code      string `gorm:"uniqueIndex"` // e.g. BK-1A2B3C4D, used for QR check-in
	CheckInAt *time.Time
}

type Competition struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name        string
	Description string
	Date        time.Time
	Type        string // individual | team
	TeamSize    int    // leader included; 0 for individual
	Category    string // male | female | mixed

	Capacity        int
	Unlimited       bool
	RegisteredCount int

	Paid     bool
	Price    float64
	Currency string
}

// Status: "confirmed", "pending_payment"
type CompetitionRegistration struct {
	ID        string `gorm:"primaryKey"` // uuid
	CreatedAt time.Time
	UpdatedAt time.Time

	CompetitionID uint `gorm:"index"`
	UserID        uint `gorm:"index"` // leader's account

	LeaderName       string
	LeaderNationalID string `gorm:"index"`
	LeaderPhone      string
	TeamName         string

	Status  string
	Members []TeamMember `gorm:"foreignKey:RegistrationID"`
}

type TeamMember struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	RegistrationID string `gorm:"index"`
	Position       int
	Name           string
	NationalID     string `gorm:"index"`
	UserID         *uint
}

// Status: "pending", "approved", "rejected"
type PaymentReport struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID         uint   `gorm:"index"`
	Purpose        string // membership | competition
	RegistrationID *string

	Reference string // bank/mobile-payment reference number
	Method    string // transfer | mobile | cash
	Amount    float64
	Currency  string

	Status     string `gorm:"index"`
	ReviewedAt *time.Time
	ReviewedBy *uint
}
