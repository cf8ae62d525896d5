package links

import "time"

type Link struct {
	Code      string
	LongURL   string
	ShortURL  string
	OwnerID   string
	Clicks    int64
	CreatedAt time.Time
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type ShortenInput struct {
	LongURL string
	OwnerID string
}
