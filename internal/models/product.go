package models

import "time"

// Product represents a product in the store.
type Product struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Title         string    `json:"title" gorm:"type:varchar(200);not null" bson:"title"`
	Description   string    `json:"description" gorm:"type:text;not null" bson:"description"`
	Price         int64     `json:"price" gorm:"not null" bson:"price"`
	ImageURL      string    `json:"imageUrl" gorm:"type:varchar(500);not null" bson:"image_url"`
	Stock         int       `json:"stock" gorm:"not null;default:0" bson:"stock"`
	Categories    []string  `json:"categories" gorm:"serializer:json;type:text" bson:"categories"`
	Subcategories []string  `json:"subcategories" gorm:"serializer:json;type:text" bson:"subcategories"`
	IsVisible     bool      `json:"isVisible" gorm:"not null" bson:"is_visible"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// HasSubcategory reports whether the product is listed under the given
// "<category>-<subcategory>" key.
func (p Product) HasSubcategory(key string) bool {
	for _, s := range p.Subcategories {
		if s == key {
			return true
		}
	}
	return false
}
