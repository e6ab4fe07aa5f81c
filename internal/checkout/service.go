package checkout

import (
	"context"
	"time"

	"github.com/travelia-app/travelia-backend/internal/cart"
	"github.com/travelia-app/travelia-backend/internal/notify"
	"github.com/travelia-app/travelia-backend/internal/session"
	"github.com/travelia-app/travelia-backend/pkg/enums"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/travel"
)

// TravelAPI is the slice of the upstream client checkout needs.
type TravelAPI interface {
	CreateTransaction(ctx context.Context, token string, input travel.CreateTransactionInput) error
}

// LockStore serializes in-flight checkouts per session.
type LockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutLockKey(sessionID string) string
}

// Service turns the session's selection set and payment choice into exactly
// one transaction-creation request.
type Service interface {
	Checkout(ctx context.Context, sess session.Session) (*Result, error)
}

// Result tells the client where to go next.
type Result struct {
	CartIDs         []string `json:"cartIds"`
	PaymentMethodID string   `json:"paymentMethodId"`
	RedirectTo      string   `json:"redirectTo"`
}

type ServiceParams struct {
	API      TravelAPI
	Cart     cart.Service
	Locks    LockStore
	Notifier notify.Service
	LockTTL  time.Duration
}

type service struct {
	api      TravelAPI
	cart     cart.Service
	locks    LockStore
	notifier notify.Service
	lockTTL  time.Duration
}

const (
	defaultLockTTL     = 30 * time.Second
	transactionsTarget = "/my-transactions"
)

func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "travel api required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart service required")
	}
	if params.Locks == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "lock store required")
	}
	ttl := params.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &service{
		api:      params.API,
		cart:     params.Cart,
		locks:    params.Locks,
		notifier: params.Notifier,
		lockTTL:  ttl,
	}, nil
}

func (s *service) Checkout(ctx context.Context, sess session.Session) (*Result, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}

	state, err := s.cart.CheckoutState(ctx, sess)
	if err != nil {
		return nil, err
	}

	// Precondition gate, not an error path in the UI sense: the control is
	// disabled until both hold, so hitting this means a stale client.
	if len(state.Selected) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no cart lines selected")
	}
	if state.PaymentMethodID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method not chosen")
	}

	lockKey := s.locks.CheckoutLockKey(sess.ID)
	acquired, err := s.locks.SetNX(ctx, lockKey, "1", s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}
	defer func() { _ = s.locks.Del(ctx, lockKey) }()

	input := travel.CreateTransactionInput{
		CartIDs:         state.Selected,
		PaymentMethodID: state.PaymentMethodID,
	}
	if err := s.api.CreateTransaction(ctx, sess.Token, input); err != nil {
		s.notify(ctx, sess, enums.NoticeLevelError, "checkout failed, your cart is unchanged")
		return nil, err
	}

	// The server consumed the cart; drop the stale selection and choice so
	// the next load starts clean.
	if err := s.cart.ClearState(ctx, sess); err != nil {
		s.notify(ctx, sess, enums.NoticeLevelInfo, "checkout complete, cart view may need a refresh")
	}

	s.notify(ctx, sess, enums.NoticeLevelSuccess, "transaction created")

	return &Result{
		CartIDs:         state.Selected,
		PaymentMethodID: state.PaymentMethodID,
		RedirectTo:      transactionsTarget,
	}, nil
}

func (s *service) notify(ctx context.Context, sess session.Session, level enums.NoticeLevel, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Push(ctx, sess.ID, level, message)
}
