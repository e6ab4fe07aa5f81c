package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/travelia-app/travelia-backend/pkg/enums"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/logger"
)

// Notice is one ephemeral message in a session's feed.
type Notice struct {
	ID        string            `json:"id"`
	Level     enums.NoticeLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Store is the redis surface backing the feed.
type Store interface {
	RPush(ctx context.Context, key string, ttl time.Duration, values ...any) error
	LRangeAll(ctx context.Context, key string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
	NoticeKey(sessionID string) string
}

// Service is the toast analogue: pending notices auto-expire, and reading
// the feed clears it.
type Service interface {
	Push(ctx context.Context, sessionID string, level enums.NoticeLevel, message string)
	Drain(ctx context.Context, sessionID string) ([]Notice, error)
}

type service struct {
	store  Store
	logger *logger.Logger
	ttl    time.Duration
}

const defaultNoticeTTL = 10 * time.Minute

func NewService(store Store, logg *logger.Logger, ttl time.Duration) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notice store required")
	}
	if ttl <= 0 {
		ttl = defaultNoticeTTL
	}
	return &service{store: store, logger: logg, ttl: ttl}, nil
}

// Push appends a notice. Best effort: a feed failure never fails the
// operation that produced the notice.
func (s *service) Push(ctx context.Context, sessionID string, level enums.NoticeLevel, message string) {
	if sessionID == "" || message == "" {
		return
	}
	notice := Notice{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		return
	}
	if err := s.store.RPush(ctx, s.store.NoticeKey(sessionID), s.ttl, string(payload)); err != nil && s.logger != nil {
		s.logger.Warn(s.logger.WithField(ctx, "session", sessionID), "failed to push notice")
	}
}

// Drain returns pending notices and clears the feed.
func (s *service) Drain(ctx context.Context, sessionID string) ([]Notice, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	key := s.store.NoticeKey(sessionID)
	raw, err := s.store.LRangeAll(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read notices")
	}

	notices := make([]Notice, 0, len(raw))
	for _, entry := range raw {
		var notice Notice
		if err := json.Unmarshal([]byte(entry), &notice); err != nil {
			continue
		}
		notices = append(notices, notice)
	}

	if len(raw) > 0 {
		if err := s.store.Del(ctx, key); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear notices")
		}
	}
	return notices, nil
}
