package web

import (
	"context"

	"thriftmart/internal/domain/repository"
	"thriftmart/internal/infrastructure/ratelimit"
	"thriftmart/internal/infrastructure/telemetry"
	ws "thriftmart/internal/infrastructure/websocket"
	"thriftmart/internal/usecase"
	"thriftmart/pkg/logger"
)

// StateData is the payload of a "state" message.
type StateData struct {
	Version    uint64           `json:"version"`
	Loading    bool             `json:"loading"`
	Query      string           `json:"query"`
	CategoryID string           `json:"category_id"`
	Heading    string           `json:"heading"`
	CountLabel string           `json:"count_label"`
	HTML       string           `json:"html"`
	Listings   []Card           `json:"listings"`
	Categories []CategoryOption `json:"categories"`
}

type SessionConfig struct {
	Storefront          usecase.Storefront
	Changes             repository.ChangeFeed
	Renderer            *Renderer
	Images              ImageResolver
	ListingErrorPolicy  usecase.ErrorPolicy
	CategoryErrorPolicy usecase.ErrorPolicy
	// ViewLimiter, when set, throttles "view" messages per session.
	ViewLimiter ratelimit.Limiter
	Metrics     *telemetry.Metrics
}

// Session binds one websocket client to its own Feed and pushes every state
// change back as a rendered results fragment.
type Session struct {
	client *ws.Client
	feed   *usecase.Feed
	cfg    SessionConfig
	ctx    context.Context
	cancel context.CancelFunc
}

func NewSession(ctx context.Context, client *ws.Client, filter repository.ListingFilter, cfg SessionConfig) *Session {
	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		client: client,
		cfg:    cfg,
		ctx:    sctx,
		cancel: cancel,
	}
	s.feed = usecase.NewFeed(sctx, cfg.Storefront, cfg.Changes, usecase.FeedOptions{
		Filter:              filter,
		ListingErrorPolicy:  cfg.ListingErrorPolicy,
		CategoryErrorPolicy: cfg.CategoryErrorPolicy,
		Notifier:            usecase.NotifierFunc(s.toast),
		OnChange:            s.push,
		Metrics:             cfg.Metrics,
	})
	client.Handler = s
	return s
}

// Start subscribes the feed and issues the initial fetches.
func (s *Session) Start() {
	s.feed.Activate()
}

func (s *Session) Feed() *usecase.Feed {
	return s.feed
}

func (s *Session) HandleMessage(client *ws.Client, msg ws.WSMessage) {
	switch msg.Type {
	case ws.MessageTypeSetFilter:
		var data ws.SetFilterData
		if err := msg.DecodeData(&data); err != nil {
			client.SendError("Invalid set_filter format")
			return
		}
		s.feed.SetFilter(repository.ListingFilter{Search: data.Query, CategoryID: data.CategoryID})

	case ws.MessageTypeRefetch:
		s.feed.Refetch()

	case ws.MessageTypeView:
		var data ws.ViewData
		if err := msg.DecodeData(&data); err != nil || data.ListingID == "" {
			client.SendError("Missing listing_id")
			return
		}
		if !s.allowView() {
			client.SendError("Too many view events")
			return
		}
		s.feed.IncrementViews(s.ctx, data.ListingID)

	default:
		logger.Debug("WebSocket: unknown message type '%s' from client %s", msg.Type, client.ID)
		client.SendError("Unknown message type")
	}
}

func (s *Session) allowView() bool {
	if s.cfg.ViewLimiter == nil {
		return true
	}
	allowed, _, err := s.cfg.ViewLimiter.Allow(s.ctx, "ws:"+s.client.ID)
	if err != nil {
		logger.Warn("Session %s: view limiter unavailable: %v", s.client.ID, err)
		return true
	}
	if !allowed && s.cfg.Metrics != nil {
		s.cfg.Metrics.RateLimited.WithLabelValues("ws_view").Inc()
	}
	return allowed
}

func (s *Session) Refresh() {
	s.feed.Refetch()
}

func (s *Session) Close() {
	s.cancel()
	s.feed.Close()
}

func (s *Session) toast(n usecase.Notification) {
	s.client.SendMessage(ws.MessageTypeToast, n)
}

func (s *Session) push(state usecase.FeedState) {
	pv := NewPageView(state, s.cfg.Images)
	data := StateData{
		Version:    state.Version,
		Loading:    pv.Loading,
		Query:      pv.Query,
		CategoryID: pv.SelectedCategory,
		Heading:    pv.Heading,
		CountLabel: pv.CountLabel,
		Listings:   pv.Cards,
		Categories: pv.Categories,
	}
	if s.cfg.Renderer != nil {
		html, err := s.cfg.Renderer.RenderResults(pv)
		if err != nil {
			logger.Error("Session %s: %v", s.client.ID, err)
			return
		}
		data.HTML = html
	}
	s.client.SendMessage(ws.MessageTypeState, data)
}
