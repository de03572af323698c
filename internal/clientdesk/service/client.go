package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/domain"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store"
	"github.com/aussiebroadwan/clientdesk/pkg/slogx"
)

var ErrClientNotFound = errors.New("client not found")

// DefaultQueryTimeout bounds every store call when QueryTimeout is unset.
const DefaultQueryTimeout = 5 * time.Second

type ClientService struct {
	Store        store.Store
	QueryTimeout time.Duration
}

var tracer = otel.Tracer("github.com/aussiebroadwan/clientdesk/internal/clientdesk/service")

// begin starts a span for op and bounds the store call by QueryTimeout.
func (s *ClientService) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, context.CancelFunc) {
	ctx, span := tracer.Start(ctx, "ClientService."+op, trace.WithAttributes(attrs...))

	timeout := s.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, span, func() {
		cancel()
		span.End()
	}
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// ListClients returns up to store.ListLimit clients, newest first. search is
// matched case-insensitively against the name; blank means no filter.
func (s *ClientService) ListClients(ctx context.Context, search string) ([]domain.Client, error) {
	l := slogx.FromContext(ctx)

	ctx, span, done := s.begin(ctx, "ListClients", attribute.String("clients.search", search))
	defer done()

	clients, err := s.Store.Clients().ListClients(ctx, search)
	if err != nil {
		failSpan(span, err)
		l.Error("failed to list clients", "search", search, "error", err)
		return nil, err
	}

	l.Debug("clients listed", "search", search, "count", len(clients))
	return clients, nil
}

// GetClient returns ErrClientNotFound when id does not exist.
func (s *ClientService) GetClient(ctx context.Context, id int64) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	ctx, span, done := s.begin(ctx, "GetClient", attribute.Int64("clients.id", id))
	defer done()

	client, err := s.Store.Clients().GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrClientNotFound
		}
		failSpan(span, err)
		l.Error("failed to get client", "client_id", id, "error", err)
		return domain.Client{}, err
	}
	return client, nil
}

// CreateClient stores an already validated client and returns it with its
// generated id and creation time.
func (s *ClientService) CreateClient(ctx context.Context, fields domain.ClientFields) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	ctx, span, done := s.begin(ctx, "CreateClient")
	defer done()

	client, err := s.Store.Clients().CreateClient(ctx, fields)
	if err != nil {
		failSpan(span, err)
		l.Error("failed to create client", "error", err)
		return domain.Client{}, err
	}

	l.Info("client created", "client_id", client.ID)
	return client, nil
}

// UpdateClient applies a validated partial update. An empty patch returns
// the client unchanged.
func (s *ClientService) UpdateClient(ctx context.Context, id int64, patch domain.ClientPatch) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	ctx, span, done := s.begin(ctx, "UpdateClient", attribute.Int64("clients.id", id))
	defer done()

	client, err := s.Store.Clients().UpdateClient(ctx, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrClientNotFound
		}
		failSpan(span, err)
		l.Error("failed to update client", "client_id", id, "error", err)
		return domain.Client{}, err
	}

	if !patch.IsEmpty() {
		l.Info("client updated", "client_id", id)
	}
	return client, nil
}

// DeleteClient removes a client. ErrClientNotFound when nothing was deleted.
func (s *ClientService) DeleteClient(ctx context.Context, id int64) error {
	l := slogx.FromContext(ctx)

	ctx, span, done := s.begin(ctx, "DeleteClient", attribute.Int64("clients.id", id))
	defer done()

	deleted, err := s.Store.Clients().DeleteClient(ctx, id)
	if err != nil {
		failSpan(span, err)
		l.Error("failed to delete client", "client_id", id, "error", err)
		return err
	}
	if !deleted {
		return ErrClientNotFound
	}

	l.Info("client deleted", "client_id", id)
	return nil
}
