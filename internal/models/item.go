package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a listing offered for rent, priced in credits per day.
type Item struct {
	ID             int64           `json:"id"`
	OwnerID        int64           `json:"owner_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	PricePerDay    decimal.Decimal `json:"price_per_day"`
	ImageURL       string          `json:"image_url,omitempty"`
	IsAvailable    bool            `json:"is_available"`
	AvailableUntil *time.Time      `json:"available_until,omitempty"`
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	CreatedAt      time.Time       `json:"created_at"`
}
