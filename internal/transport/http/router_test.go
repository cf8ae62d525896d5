package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/shrinkr-io/shrinkr/internal/config"
	"github.com/shrinkr-io/shrinkr/internal/processing/auth"
	"github.com/shrinkr-io/shrinkr/internal/processing/links"
)

// In-memory stores backing the handler tests. They honor the same error
// contracts as the Mongo repositories.

type memLinkRepo struct {
	mu     sync.Mutex
	byCode map[string]*links.Link
	byURL  map[string]*links.Link
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{
		byCode: make(map[string]*links.Link),
		byURL:  make(map[string]*links.Link),
	}
}

func (m *memLinkRepo) Insert(_ context.Context, link *links.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byCode[link.Code]; ok {
		return links.ErrCodeTaken
	}
	if _, ok := m.byURL[link.LongURL]; ok {
		return links.ErrURLTaken
	}
	cp := *link
	m.byCode[link.Code] = &cp
	m.byURL[link.LongURL] = &cp
	return nil
}

func (m *memLinkRepo) FindByCode(_ context.Context, code string) (*links.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.byCode[code]
	if !ok {
		return nil, links.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (m *memLinkRepo) FindByLongURL(_ context.Context, longURL string) (*links.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.byURL[longURL]
	if !ok {
		return nil, links.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (m *memLinkRepo) FindByCodeAndIncClick(_ context.Context, code string) (*links.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.byCode[code]
	if !ok {
		return nil, links.ErrNotFound
	}
	link.Clicks++
	cp := *link
	return &cp, nil
}

func (m *memLinkRepo) FindByOwner(_ context.Context, ownerID string) ([]*links.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*links.Link, 0)
	for _, link := range m.byCode {
		if link.OwnerID == ownerID {
			cp := *link
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type memStatsRepo struct {
	mu     sync.Mutex
	counts map[string]map[string]int64 // code -> date -> count
}

func newMemStatsRepo() *memStatsRepo {
	return &memStatsRepo{counts: make(map[string]map[string]int64)}
}

func (m *memStatsRepo) IncDaily(_ context.Context, code string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts[code] == nil {
		m.counts[code] = make(map[string]int64)
	}
	m.counts[code][at.UTC().Format(time.DateOnly)]++
	return nil
}

func (m *memStatsRepo) GetDaily(_ context.Context, code string, from, to time.Time) ([]links.DailyCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]links.DailyCount, 0)
	for date, count := range m.counts[code] {
		if date >= from.UTC().Format(time.DateOnly) && date <= to.UTC().Format(time.DateOnly) {
			out = append(out, links.DailyCount{Date: date, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type memOutboxRepo struct {
	mu    sync.Mutex
	codes []string
}

func (m *memOutboxRepo) EnqueueClick(_ context.Context, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, code)
	return nil
}

type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*auth.User
	byID    map[string]*auth.User
	nextID  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byEmail: make(map[string]*auth.User),
		byID:    make(map[string]*auth.User),
	}
}

func (m *memUserRepo) Insert(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return auth.ErrEmailTaken
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	cp := *user
	m.byEmail[user.Email] = &cp
	m.byID[user.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

// seqCodeGen yields deterministic short codes.
type seqCodeGen struct {
	mu   sync.Mutex
	next int
}

func (g *seqCodeGen) Generate(length int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	code := fmt.Sprintf("c%06d", g.next)
	if len(code) > length {
		code = code[:length]
	}
	return code, nil
}

type testEnv struct {
	server *httptest.Server

	linkRepo  *memLinkRepo
	statsRepo *memStatsRepo
	outbox    *memOutboxRepo
	userRepo  *memUserRepo
	issuer    *auth.TokenIssuer
}

func newTestEnv() *testEnv {
	cfg := &config.Config{
		App: config.AppConfig{Name: "shrinkr-test"},
		Shortener: config.ShortenerConfig{
			BaseURL:        "http://sho.rt",
			CodeLength:     7,
			RedirectStatus: http.StatusMovedPermanently,
		},
	}

	env := &testEnv{
		linkRepo:  newMemLinkRepo(),
		statsRepo: newMemStatsRepo(),
		outbox:    &memOutboxRepo{},
		userRepo:  newMemUserRepo(),
		issuer:    auth.NewTokenIssuer("test-secret", time.Hour),
	}

	linkSvc := links.NewService(
		env.linkRepo,
		env.statsRepo,
		env.outbox,
		&seqCodeGen{},
		cfg.Shortener.BaseURL,
		cfg.Shortener.CodeLength,
	)
	authSvc := auth.NewService(env.userRepo, auth.NewBcryptHasher(4), env.issuer)

	router := NewRouterWithOptions(cfg, linkSvc, authSvc, env.issuer, nil, RouterOptions{
		LinksHandlerOptions: LinksHandlerOptions{
			AsyncClick:   false,
			ClickTimeout: time.Second,
		},
	})

	env.server = httptest.NewServer(router)
	return env
}

func (e *testEnv) Close() {
	e.server.Close()
}
