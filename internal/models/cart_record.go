package models

import "time"

// CartRecord is the stored form of one session's cart.
type CartRecord struct {
	SessionKey string `gorm:"primaryKey;type:varchar(128)"`
	Payload    []byte `gorm:"not null"`
	UpdatedAt  time.Time
}
