package domain

import "time"

type Item struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	PriceYen  int64     `json:"priceYen"`
	CreatedAt time.Time `json:"createdAt"`
}
