package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shrinkr-io/shrinkr/internal/config"
	"github.com/shrinkr-io/shrinkr/internal/constants"
	"github.com/shrinkr-io/shrinkr/internal/infrastructure/logger"
	appvalidation "github.com/shrinkr-io/shrinkr/internal/infrastructure/validation"
	"github.com/shrinkr-io/shrinkr/internal/processing/links"
	"github.com/shrinkr-io/shrinkr/internal/transport/http/middleware"
	"github.com/shrinkr-io/shrinkr/pkg/httputils"
	"go.uber.org/zap"
)

type LinksHandler struct {
	cfg *config.Config
	svc *links.Service

	asyncClick   bool
	clickTimeout time.Duration
}

type LinksHandlerOptions struct {
	AsyncClick   bool
	ClickTimeout time.Duration
}

func NewLinksHandler(cfg *config.Config, svc *links.Service) *LinksHandler {
	return NewLinksHandlerWithOptions(cfg, svc, LinksHandlerOptions{
		AsyncClick:   true,
		ClickTimeout: 2 * time.Second,
	})
}

func NewLinksHandlerWithOptions(cfg *config.Config, svc *links.Service, opts LinksHandlerOptions) *LinksHandler {
	if opts.ClickTimeout <= 0 {
		opts.ClickTimeout = 2 * time.Second
	}

	return &LinksHandler{
		cfg:          cfg,
		svc:          svc,
		asyncClick:   opts.AsyncClick,
		clickTimeout: opts.ClickTimeout,
	}
}

type shortenRequest struct {
	LongURL string `json:"longUrl" validate:"required,notblank,http_url"`
}

type linkView struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	ShortURL  string    `json:"shortUrl"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"createdAt"`
	OwnerID   string    `json:"ownerId,omitempty"`
}

func newLinkView(link *links.Link) linkView {
	return linkView{
		Code:      link.Code,
		LongURL:   link.LongURL,
		ShortURL:  link.ShortURL,
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt,
		OwnerID:   link.OwnerID,
	}
}

// Shorten handles POST /api/shorten. Identity is optional: authenticated
// callers get the new link tagged with their user id, anonymous callers
// get an ownerless link. Answers 201 for a newly created link and 200 when
// the URL was already shortened.
func (h *LinksHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidURL)
		return
	}

	ownerID, _ := middleware.IdentityFromContext(r.Context())

	link, created, err := h.svc.Shorten(r.Context(), links.ShortenInput{
		LongURL: req.LongURL,
		OwnerID: ownerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, links.ErrInvalidURL):
			httputils.WriteAPIError(w, r, constants.ErrInvalidURL)
		default:
			logger.Error("failed to shorten url", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputils.WriteData(w, r, status, newLinkView(link))
}

// Redirect handles GET /{code}: resolves the short code, bumps the click
// counter and issues a permanent redirect to the long URL.
func (h *LinksHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	link, err := h.svc.Resolve(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, links.ErrNotFound):
			httputils.WriteAPIError(w, r, constants.ErrLinkNotFound)
		default:
			logger.Error("failed to resolve code", zap.Error(err), zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	if h.asyncClick {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), h.clickTimeout)
			defer cancel()
			if err := h.svc.RecordClick(ctx, code); err != nil {
				logger.Warn("failed to record click", zap.Error(err), zap.String("code", code))
			}
		}()
	} else {
		if err := h.svc.RecordClick(r.Context(), code); err != nil {
			logger.Warn("failed to record click", zap.Error(err), zap.String("code", code))
		}
	}

	http.Redirect(w, r, link.LongURL, h.cfg.Shortener.RedirectStatus)
}

type myLinksResponse struct {
	Success bool       `json:"success"`
	Count   int        `json:"count"`
	Data    []linkView `json:"data"`
}

// MyLinks handles GET /api/links/my-links. The route is private: requests
// without an authenticated identity are rejected.
func (h *LinksHandler) MyLinks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
		return
	}

	owned, err := h.svc.ListByOwner(r.Context(), ownerID)
	if err != nil {
		logger.Error("failed to list links", zap.Error(err), zap.String("owner_id", ownerID))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	views := make([]linkView, 0, len(owned))
	for _, link := range owned {
		views = append(views, newLinkView(link))
	}

	httputils.WriteSuccess(w, r, http.StatusOK, myLinksResponse{
		Success: true,
		Count:   len(views),
		Data:    views,
	})
}

type statsQueryParams struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

type statsView struct {
	Code  string             `json:"code"`
	From  string             `json:"from"`
	To    string             `json:"to"`
	Daily []links.DailyCount `json:"daily"`
}

// Stats handles GET /api/links/{code}/stats with a from/to date range.
func (h *LinksHandler) Stats(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if err := appvalidation.Validate(statsQueryParams{From: fromRaw, To: toRaw}); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage("from and to are required (YYYY-MM-DD)"))
		return
	}

	from, err := time.Parse(time.DateOnly, fromRaw)
	if err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage("invalid from (YYYY-MM-DD)"))
		return
	}
	to, err := time.Parse(time.DateOnly, toRaw)
	if err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage("invalid to (YYYY-MM-DD)"))
		return
	}

	daily, err := h.svc.DailyStats(r.Context(), code, from, to)
	if err != nil {
		switch {
		case errors.Is(err, links.ErrNotFound):
			httputils.WriteAPIError(w, r, constants.ErrLinkNotFound)
		case errors.Is(err, links.ErrInvalidRange):
			httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage("from must be <= to"))
		default:
			logger.Error("failed to fetch stats", zap.Error(err), zap.String("code", code))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	httputils.WriteData(w, r, http.StatusOK, statsView{
		Code:  code,
		From:  from.Format(time.DateOnly),
		To:    to.Format(time.DateOnly),
		Daily: daily,
	})
}
