package links

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("link not found")
	ErrInvalidURL   = errors.New("invalid url")
	ErrCodeTaken    = errors.New("code taken")
	ErrURLTaken     = errors.New("long url already shortened")
	ErrInvalidRange = errors.New("invalid date range")
)

type LinkRepository interface {
	Insert(ctx context.Context, link *Link) error
	FindByCode(ctx context.Context, code string) (*Link, error)
	FindByLongURL(ctx context.Context, longURL string) (*Link, error)
	FindByCodeAndIncClick(ctx context.Context, code string) (*Link, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*Link, error)
}

type StatsRepository interface {
	IncDaily(ctx context.Context, code string, at time.Time) error
	GetDaily(ctx context.Context, code string, from, to time.Time) ([]DailyCount, error)
}

type ClickOutboxRepository interface {
	EnqueueClick(ctx context.Context, code string, at time.Time) error
}

type CodeGenerator interface {
	Generate(length int) (string, error)
}
