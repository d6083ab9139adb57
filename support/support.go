package support

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Mdhelaluddin3391/quickdash-go/api"
	"github.com/Mdhelaluddin3391/quickdash-go/sessions"
)

const (
	ticketsEndpoint = "/auth/customer/tickets/"
	historyEndpoint = "/auth/customer/tickets/history/"
	chatEndpoint    = "/assistant/chat/"

	// maxCachedTickets bounds the locally cached ticket list.
	maxCachedTickets = 10
)

// Ticket is a support ticket.
type Ticket struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Service wraps support tickets and the assistant chat. The most recent
// tickets are mirrored into the session store so the support view can render
// something before (or without) the network.
type Service struct {
	api  *api.Client
	repo sessions.Repo
	log  zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

// NewService creates the support service.
func NewService(apiClient *api.Client, repo sessions.Repo, options ...ServiceOption) (*Service, error) {
	if apiClient == nil {
		return nil, errors.New("[NewService] api client is required")
	}
	if repo == nil {
		return nil, errors.New("[NewService] repo is required")
	}
	s := &Service{
		api:  apiClient,
		repo: repo,
		log:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// CreateTicket files a new support ticket, optionally bound to an order.
func (s *Service) CreateTicket(ctx context.Context, orderID, subject, message string) (*Ticket, error) {
	if subject == "" {
		return nil, errors.New("[Service.CreateTicket] subject is required")
	}
	var ticket Ticket
	err := s.api.Post(ctx, ticketsEndpoint, map[string]string{
		"order_id": orderID,
		"subject":  subject,
		"message":  message,
	}, &ticket)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CreateTicket]")
	}
	s.cacheTickets(append([]Ticket{ticket}, s.CachedTickets()...))
	return &ticket, nil
}

// ListTickets fetches the ticket history and refreshes the local cache.
func (s *Service) ListTickets(ctx context.Context) ([]Ticket, error) {
	var tickets []Ticket
	if err := s.api.Get(ctx, historyEndpoint, nil, &tickets); err != nil {
		return nil, errors.Wrap(err, "[Service.ListTickets]")
	}
	s.cacheTickets(tickets)
	return tickets, nil
}

// CachedTickets returns the locally cached ticket list, newest first. The
// cache is best-effort; a missing or corrupt entry yields nil.
func (s *Service) CachedTickets() []Ticket {
	v, ok, err := s.repo.Get(sessions.KeySupportTickets)
	if err != nil || !ok {
		return nil
	}
	var tickets []Ticket
	if err := json.Unmarshal([]byte(v), &tickets); err != nil {
		s.log.Debug().Err(err).Msg("ticket cache parse failed")
		return nil
	}
	return tickets
}

// Chat sends one message to the support assistant and returns the reply.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", errors.New("[Service.Chat] message is required")
	}
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := s.api.Post(ctx, chatEndpoint, map[string]string{"message": message}, &resp); err != nil {
		return "", errors.Wrap(err, "[Service.Chat]")
	}
	return resp.Reply, nil
}

func (s *Service) cacheTickets(tickets []Ticket) {
	if len(tickets) > maxCachedTickets {
		tickets = tickets[:maxCachedTickets]
	}
	data, err := json.Marshal(tickets)
	if err != nil {
		return
	}
	if err := s.repo.Put(sessions.KeySupportTickets, string(data)); err != nil {
		s.log.Debug().Err(err).Msg("ticket cache write failed")
	}
}
