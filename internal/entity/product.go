package entity

import "time"

type AlternativeName struct {
	Language string `json:"language"`
	Dialect  string `json:"dialect,omitempty"`
	Name     string `json:"name"`
}

type VoicePattern struct {
	Language string   `json:"language"`
	Dialect  string   `json:"dialect,omitempty"`
	Patterns []string `json:"patterns"`
}

type Stock struct {
	Quantity          float64 `json:"quantity"`
	LowStockThreshold float64 `json:"lowStockThreshold"`
}

// Product is a read-only catalog entry as seen by the resolver.
type Product struct {
	ID               string            `json:"id"`
	MerchantID       string            `json:"merchantId"`
	Name             string            `json:"name"`
	AlternativeNames []AlternativeName `json:"alternativeNames"`
	VoicePatterns    []VoicePattern    `json:"voicePatterns"`
	Category         string            `json:"category"`
	Unit             string            `json:"unit"`
	Price            float64           `json:"price"`
	Stock            Stock             `json:"stock"`
	IsActive         bool              `json:"isActive"`
	CreatedAt        time.Time         `json:"createdAt"`
}

type ProductQuery struct {
	Name     string
	Category string
	MaxPrice *float64
	Limit    int
}
