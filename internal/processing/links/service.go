package links

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

type Service struct {
	linkRepo   LinkRepository
	statsRepo  StatsRepository
	outbox     ClickOutboxRepository
	codeGen    CodeGenerator
	baseURL    string
	codeLength int
	now        func() time.Time
}

func NewService(linkRepo LinkRepository, statsRepo StatsRepository, outbox ClickOutboxRepository, codeGen CodeGenerator, baseURL string, codeLength int) *Service {
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}

	return &Service{
		linkRepo:   linkRepo,
		statsRepo:  statsRepo,
		outbox:     outbox,
		codeGen:    codeGen,
		baseURL:    strings.TrimRight(baseURL, "/"),
		codeLength: codeLength,
		now:        time.Now,
	}
}

// Shorten returns the Link for the given long URL, creating it when no
// mapping exists yet. The boolean reports whether a new Link was created.
// An existing Link is returned as-is: its code, click count and owner are
// untouched even when the caller's identity differs from the creator's.
func (s *Service) Shorten(ctx context.Context, in ShortenInput) (*Link, bool, error) {
	normalizedURL, err := validateAndNormalizeURL(in.LongURL)
	if err != nil {
		return nil, false, ErrInvalidURL
	}

	existing, err := s.linkRepo.FindByLongURL(ctx, normalizedURL)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	link := &Link{
		LongURL:   normalizedURL,
		OwnerID:   strings.TrimSpace(in.OwnerID),
		CreatedAt: s.now().UTC(),
	}

	const maxAttempts = 10
	for range maxAttempts {
		code, err := s.codeGen.Generate(s.codeLength)
		if err != nil {
			return nil, false, err
		}
		link.Code = code
		link.ShortURL = s.baseURL + "/" + code

		err = s.linkRepo.Insert(ctx, link)
		if err == nil {
			return link, true, nil
		}
		if errors.Is(err, ErrCodeTaken) {
			continue
		}
		if errors.Is(err, ErrURLTaken) {
			// Another request shortened the same URL first; hand back the winner.
			winner, findErr := s.linkRepo.FindByLongURL(ctx, normalizedURL)
			if findErr != nil {
				return nil, false, findErr
			}
			return winner, false, nil
		}
		return nil, false, err
	}

	return nil, false, ErrCodeTaken
}

// Resolve looks up a Link by its short code and atomically increments its
// click counter.
func (s *Service) Resolve(ctx context.Context, code string) (*Link, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}

	return s.linkRepo.FindByCodeAndIncClick(ctx, code)
}

// RecordClick enqueues a click event for the analytics pipeline. It is a
// no-op when no outbox is configured.
func (s *Service) RecordClick(ctx context.Context, code string) error {
	if s.outbox == nil || strings.TrimSpace(code) == "" {
		return nil
	}
	return s.outbox.EnqueueClick(ctx, code, s.now().UTC())
}

// ListByOwner returns all links owned by the given identity, newest first.
// An identity owning no links yields an empty slice, not an error.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Link, error) {
	owned, err := s.linkRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owned == nil {
		owned = []*Link{}
	}
	return owned, nil
}

// DailyStats returns the per-day click counts for a code across [from, to],
// filling days without clicks with zero.
func (s *Service) DailyStats(ctx context.Context, code string, from, to time.Time) ([]DailyCount, error) {
	if _, err := s.linkRepo.FindByCode(ctx, strings.TrimSpace(code)); err != nil {
		return nil, err
	}

	from = from.UTC()
	to = to.UTC()
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	counts, err := s.statsRepo.GetDaily(ctx, code, from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDate[c.Date] = c.Count
	}

	out := make([]DailyCount, 0, int(to.Sub(from).Hours()/24)+1)
	for day := dateOnly(from); !day.After(dateOnly(to)); day = day.AddDate(0, 0, 1) {
		ds := day.Format(time.DateOnly)
		out = append(out, DailyCount{
			Date:  ds,
			Count: byDate[ds],
		})
	}

	return out, nil
}

func validateAndNormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", ErrInvalidURL
	}

	return u.String(), nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
