package chat

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/sharenet/backend/internal/models"
)

// ErrEmptyBody is returned when a message has no text.
var ErrEmptyBody = errors.New("message body is empty")

// ErrSelfMessage is returned when sender == receiver and self-messaging is
// disabled by configuration.
var ErrSelfMessage = errors.New("cannot message yourself")

// ErrUnknownParticipant is returned when the sender or receiver account
// does not exist and participant validation is enabled.
var ErrUnknownParticipant = errors.New("unknown participant account")

// Store is the persistence boundary for messaging.
type Store interface {
	Append(ctx context.Context, msg *models.ChatMessage) error
	ListBetween(ctx context.Context, a, b int64) ([]*models.ChatMessage, error)
	AccountsExist(ctx context.Context, ids ...int64) (bool, error)
}

type Service interface {
	Send(ctx context.Context, senderID, receiverID int64, body string) (*models.ChatMessage, error)
	History(ctx context.Context, a, b int64) ([]*models.ChatMessage, error)
}

// Options make the messaging validation rules explicit.
type Options struct {
	AllowSelfMessages   bool
	RequireParticipants bool
	StorageTimeout      time.Duration
}

type service struct {
	store Store
	opts  Options
	now   func() time.Time
}

func NewService(store Store, opts Options) Service {
	return &service{store: store, opts: opts, now: time.Now}
}

var _ Service = (*service)(nil)

// Send records a message with a server-assigned timestamp. Caller-supplied
// timestamps are never honored.
func (s *service) Send(ctx context.Context, senderID, receiverID int64, body string) (*models.ChatMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	if senderID == receiverID && !s.opts.AllowSelfMessages {
		return nil, ErrSelfMessage
	}
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	if s.opts.RequireParticipants {
		ok, err := s.store.AccountsExist(ctx, senderID, receiverID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnknownParticipant
		}
	}
	msg := &models.ChatMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		SentAt:     s.now().UTC(),
	}
	if err := s.store.Append(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the full bidirectional thread between a and b, ascending
// by timestamp with the id as a deterministic tie-break. History(a, b) and
// History(b, a) return the same sequence.
func (s *service) History(ctx context.Context, a, b int64) ([]*models.ChatMessage, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	msgs, err := s.store.ListBetween(ctx, a, b)
	if err != nil {
		return nil, err
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].SentAt.Before(msgs[j].SentAt)
	})
	return msgs, nil
}

func (s *service) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StorageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.StorageTimeout)
}
