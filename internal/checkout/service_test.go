package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/travelia-app/travelia-backend/internal/cart"
	"github.com/travelia-app/travelia-backend/internal/notify"
	"github.com/travelia-app/travelia-backend/internal/session"
	"github.com/travelia-app/travelia-backend/pkg/enums"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/travel"
)

type stubAPI struct {
	calls int
	input travel.CreateTransactionInput
	err   error
}

func (s *stubAPI) CreateTransaction(_ context.Context, _ string, input travel.CreateTransactionInput) error {
	s.calls++
	s.input = input
	return s.err
}

type stubCart struct {
	cart.Service

	state   cart.State
	cleared bool
}

func (s *stubCart) CheckoutState(_ context.Context, _ session.Session) (cart.State, error) {
	return s.state, nil
}

func (s *stubCart) ClearState(_ context.Context, _ session.Session) error {
	s.cleared = true
	return nil
}

type stubLocks struct {
	held    bool
	setErr  error
	deleted []string
}

func (s *stubLocks) SetNX(_ context.Context, _ string, _ any, _ time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	if s.held {
		return false, nil
	}
	s.held = true
	return true, nil
}

func (s *stubLocks) Del(_ context.Context, keys ...string) error {
	s.held = false
	s.deleted = append(s.deleted, keys...)
	return nil
}

func (s *stubLocks) CheckoutLockKey(sessionID string) string {
	return "checkout_lock:" + sessionID
}

type stubNotifier struct {
	levels   []enums.NoticeLevel
	messages []string
}

func (s *stubNotifier) Push(_ context.Context, _ string, level enums.NoticeLevel, message string) {
	s.levels = append(s.levels, level)
	s.messages = append(s.messages, message)
}

func (s *stubNotifier) Drain(_ context.Context, _ string) ([]notify.Notice, error) {
	return nil, nil
}

var testSession = session.FromToken("token-abc")

func newTestService(t *testing.T, api *stubAPI, carts *stubCart, locks *stubLocks, notifier *stubNotifier) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		API:      api,
		Cart:     carts,
		Locks:    locks,
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("setup error: %v", err)
	}
	return svc
}

func TestCheckoutRejectsEmptySelectionWithoutNetwork(t *testing.T) {
	api := &stubAPI{}
	carts := &stubCart{state: cart.State{PaymentMethodID: "pm_1"}}
	locks := &stubLocks{}

	svc := newTestService(t, api, carts, locks, nil)

	_, err := svc.Checkout(context.Background(), testSession)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if api.calls != 0 {
		t.Fatalf("expected zero upstream calls, got %d", api.calls)
	}
	if locks.held {
		t.Fatal("expected no lock taken for a failed precondition")
	}
}

func TestCheckoutRejectsMissingPaymentMethodWithoutNetwork(t *testing.T) {
	api := &stubAPI{}
	carts := &stubCart{state: cart.State{Selected: []string{"1"}}}

	svc := newTestService(t, api, carts, &stubLocks{}, nil)

	_, err := svc.Checkout(context.Background(), testSession)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if api.calls != 0 {
		t.Fatalf("expected zero upstream calls, got %d", api.calls)
	}
}

func TestCheckoutSendsSelectedLinesInOrder(t *testing.T) {
	api := &stubAPI{}
	carts := &stubCart{state: cart.State{Selected: []string{"1", "2"}, PaymentMethodID: "pm_1"}}
	locks := &stubLocks{}
	notifier := &stubNotifier{}

	svc := newTestService(t, api, carts, locks, notifier)

	result, err := svc.Checkout(context.Background(), testSession)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.calls != 1 {
		t.Fatalf("expected exactly one create call, got %d", api.calls)
	}
	if len(api.input.CartIDs) != 2 || api.input.CartIDs[0] != "1" || api.input.CartIDs[1] != "2" {
		t.Fatalf("expected cartIds [1 2], got %v", api.input.CartIDs)
	}
	if api.input.PaymentMethodID != "pm_1" {
		t.Fatalf("expected paymentMethodId pm_1, got %q", api.input.PaymentMethodID)
	}
	if !carts.cleared {
		t.Fatal("expected session cart state cleared after checkout")
	}
	if result.RedirectTo != "/my-transactions" {
		t.Fatalf("unexpected redirect target %q", result.RedirectTo)
	}
	if len(notifier.levels) == 0 || notifier.levels[len(notifier.levels)-1] != enums.NoticeLevelSuccess {
		t.Fatalf("expected a success notice, got %v", notifier.levels)
	}
	if len(locks.deleted) != 1 {
		t.Fatalf("expected the lock released, got %v", locks.deleted)
	}
}

func TestCheckoutConflictsWhileInFlight(t *testing.T) {
	api := &stubAPI{}
	carts := &stubCart{state: cart.State{Selected: []string{"1"}, PaymentMethodID: "pm_1"}}
	locks := &stubLocks{held: true}

	svc := newTestService(t, api, carts, locks, nil)

	_, err := svc.Checkout(context.Background(), testSession)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if api.calls != 0 {
		t.Fatalf("expected zero upstream calls while locked, got %d", api.calls)
	}
}

func TestCheckoutFailureKeepsStateAndNotifies(t *testing.T) {
	api := &stubAPI{err: pkgerrors.New(pkgerrors.CodeUpstream, "upstream rejected the transaction")}
	carts := &stubCart{state: cart.State{Selected: []string{"1"}, PaymentMethodID: "pm_1"}}
	locks := &stubLocks{}
	notifier := &stubNotifier{}

	svc := newTestService(t, api, carts, locks, notifier)

	_, err := svc.Checkout(context.Background(), testSession)
	if err == nil {
		t.Fatal("expected the upstream error to surface")
	}
	if carts.cleared {
		t.Fatal("expected cart state untouched after a failed checkout")
	}
	if len(notifier.levels) != 1 || notifier.levels[0] != enums.NoticeLevelError {
		t.Fatalf("expected one error notice, got %v", notifier.levels)
	}
	if len(locks.deleted) != 1 {
		t.Fatal("expected the lock released after failure")
	}
}

func TestCheckoutRequiresToken(t *testing.T) {
	svc := newTestService(t, &stubAPI{}, &stubCart{}, &stubLocks{}, nil)

	_, err := svc.Checkout(context.Background(), session.Session{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
