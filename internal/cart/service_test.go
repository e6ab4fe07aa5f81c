package cart

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/travelia-app/travelia-backend/internal/session"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/travel"
)

type stubAPI struct {
	lines   []travel.CartLine
	methods []travel.PaymentMethod

	updatedID  string
	updatedQty int
	updates    int
	deletedID  string
	getCalls   int
}

func (s *stubAPI) GetCart(_ context.Context, _ string) ([]travel.CartLine, error) {
	s.getCalls++
	return s.lines, nil
}

func (s *stubAPI) UpdateCartQuantity(_ context.Context, _, cartID string, quantity int) error {
	s.updates++
	s.updatedID = cartID
	s.updatedQty = quantity
	return nil
}

func (s *stubAPI) DeleteCartItem(_ context.Context, _, cartID string) error {
	s.deletedID = cartID
	kept := make([]travel.CartLine, 0, len(s.lines))
	for _, line := range s.lines {
		if line.ID != cartID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	return nil
}

func (s *stubAPI) ListPaymentMethods(_ context.Context, _ string) ([]travel.PaymentMethod, error) {
	return s.methods, nil
}

type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memStore) CartStateKey(sessionID string) string {
	return "cart_state:" + sessionID
}

func line(id string, qty int, discount int64) travel.CartLine {
	return travel.CartLine{
		ID:       id,
		Quantity: qty,
		Activity: travel.ActivitySummary{
			ID:            "act-" + id,
			Title:         "Activity " + id,
			Price:         decimal.NewFromInt(discount * 2),
			PriceDiscount: decimal.NewFromInt(discount),
		},
	}
}

func newTestService(t *testing.T, api *stubAPI) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{API: api, Store: newMemStore()})
	if err != nil {
		t.Fatalf("setup error: %v", err)
	}
	return svc
}

var testSession = session.FromToken("token-abc")

func TestLoadDefaultsToSelectAll(t *testing.T) {
	api := &stubAPI{lines: []travel.CartLine{line("1", 2, 100000), line("2", 1, 50000)}}
	svc := newTestService(t, api)

	view, err := svc.Load(context.Background(), testSession)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Selected) != 2 {
		t.Fatalf("expected select-all on first load, got %v", view.Selected)
	}
	if !view.Total.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("expected total 250000, got %s", view.Total)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	svc := newTestService(t, &stubAPI{})

	_, err := svc.Load(context.Background(), session.Session{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestDeselectingLineExcludesItFromTotal(t *testing.T) {
	api := &stubAPI{lines: []travel.CartLine{line("1", 2, 100000), line("2", 1, 50000)}}
	svc := newTestService(t, api)

	if _, err := svc.Load(context.Background(), testSession); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.ToggleSelection(context.Background(), testSession, "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.Total.Equal(decimal.NewFromInt(200000)) {
		t.Fatalf("expected total 200000 after deselecting line 2, got %s", view.Total)
	}
	if len(view.Selected) != 1 || view.Selected[0] != "1" {
		t.Fatalf("expected only line 1 selected, got %v", view.Selected)
	}
}

func TestToggleUnknownLineRejected(t *testing.T) {
	api := &stubAPI{lines: []travel.CartLine{line("1", 1, 1000)}}
	svc := newTestService(t, api)

	_, err := svc.ToggleSelection(context.Background(), testSession, "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetQuantityClampsToOne(t *testing.T) {
	for _, requested := range []int{0, -3} {
		api := &stubAPI{lines: []travel.CartLine{line("1", 2, 100000)}}
		svc := newTestService(t, api)

		if _, err := svc.SetQuantity(context.Background(), testSession, "1", requested); err != nil {
			t.Fatalf("unexpected error for quantity %d: %v", requested, err)
		}
		if api.updatedQty != 1 {
			t.Fatalf("expected clamp to 1 for requested %d, upstream saw %d", requested, api.updatedQty)
		}
	}
}

func TestSetQuantityPassesThroughAboveOne(t *testing.T) {
	api := &stubAPI{lines: []travel.CartLine{line("1", 2, 100000)}}
	svc := newTestService(t, api)

	if _, err := svc.SetQuantity(context.Background(), testSession, "1", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.updatedQty != 5 || api.updatedID != "1" {
		t.Fatalf("expected upstream update (1, 5), got (%s, %d)", api.updatedID, api.updatedQty)
	}
	if api.getCalls == 0 {
		t.Fatal("expected a reload after the mutation")
	}
}

func TestRemoveLinePrunesSelection(t *testing.T) {
	api := &stubAPI{lines: []travel.CartLine{line("1", 2, 100000), line("2", 1, 50000)}}
	svc := newTestService(t, api)

	if _, err := svc.Load(context.Background(), testSession); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.RemoveLine(context.Background(), testSession, "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.deletedID != "2" {
		t.Fatalf("expected upstream delete of 2, got %q", api.deletedID)
	}
	for _, id := range view.Selected {
		if id == "2" {
			t.Fatal("expected removed line pruned from selection")
		}
	}
}

func TestRemoveUnselectedLineIsSafe(t *testing.T) {
	api := &stubAPI{lines: []travel.CartLine{line("1", 2, 100000), line("2", 1, 50000)}}
	svc := newTestService(t, api)

	if _, err := svc.Load(context.Background(), testSession); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Deselect first, then remove: pruning a never-selected id is a no-op.
	if _, err := svc.ToggleSelection(context.Background(), testSession, "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.RemoveLine(context.Background(), testSession, "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Selected) != 1 || view.Selected[0] != "1" {
		t.Fatalf("expected selection unchanged, got %v", view.Selected)
	}
}

func TestToggleSelectAllParity(t *testing.T) {
	api := &stubAPI{lines: []travel.CartLine{line("1", 1, 1000), line("2", 1, 2000), line("3", 1, 3000)}}
	svc := newTestService(t, api)

	if _, err := svc.Load(context.Background(), testSession); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, err := svc.ToggleSelection(context.Background(), testSession, "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	once, err := svc.ToggleSelectAll(context.Background(), testSession)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(once.Selected) != 3 {
		t.Fatalf("expected select-all when not all selected, got %v", once.Selected)
	}

	// All selected now, so the next toggle clears; a third restores all.
	twice, err := svc.ToggleSelectAll(context.Background(), testSession)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(twice.Selected) != 0 {
		t.Fatalf("expected empty selection, got %v", twice.Selected)
	}

	if len(before.Selected) == len(once.Selected) {
		t.Fatal("toggle should have changed the selection size")
	}
}

func TestLoadPrunesStaleSelection(t *testing.T) {
	api := &stubAPI{lines: []travel.CartLine{line("1", 1, 1000), line("2", 1, 2000)}}
	svc := newTestService(t, api)

	if _, err := svc.Load(context.Background(), testSession); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Line 2 disappears server side (consumed into a transaction).
	api.lines = []travel.CartLine{line("1", 1, 1000)}

	view, err := svc.Load(context.Background(), testSession)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Selected) != 1 || view.Selected[0] != "1" {
		t.Fatalf("expected stale id pruned, got %v", view.Selected)
	}
}

func TestChoosePaymentMethodValidatesID(t *testing.T) {
	api := &stubAPI{
		lines:   []travel.CartLine{line("1", 1, 1000)},
		methods: []travel.PaymentMethod{{ID: "pm_1", Name: "Bank"}},
	}
	svc := newTestService(t, api)

	_, err := svc.ChoosePaymentMethod(context.Background(), testSession, "pm_unknown")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	view, err := svc.ChoosePaymentMethod(context.Background(), testSession, "pm_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.PaymentMethodID != "pm_1" {
		t.Fatalf("expected pm_1 chosen, got %q", view.PaymentMethodID)
	}
}

func TestComputeTotal(t *testing.T) {
	lines := []travel.CartLine{line("1", 2, 100000), line("2", 1, 50000)}

	if total := ComputeTotal(lines, nil); !total.IsZero() {
		t.Fatalf("expected zero total for empty selection, got %s", total)
	}
	if total := ComputeTotal(lines, []string{"1", "2"}); !total.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("expected 250000, got %s", total)
	}
	if total := ComputeTotal(lines, []string{"2"}); !total.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected 50000, got %s", total)
	}

	// Increasing a selected quantity never decreases the total.
	bumped := []travel.CartLine{line("1", 3, 100000), line("2", 1, 50000)}
	if ComputeTotal(bumped, []string{"1", "2"}).LessThan(ComputeTotal(lines, []string{"1", "2"})) {
		t.Fatal("total decreased when quantity increased")
	}
}
