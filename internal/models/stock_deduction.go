package models

import "time"

// StockDeduction marks an order whose quantities have been taken out of the
// catalog.
type StockDeduction struct {
	OrderID   string    `gorm:"primaryKey;type:varchar(64)" bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
}
