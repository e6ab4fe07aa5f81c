package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/travelia-app/travelia-backend/internal/session"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/travel"
)

// TravelAPI is the slice of the upstream client the cart workflow needs.
type TravelAPI interface {
	GetCart(ctx context.Context, token string) ([]travel.CartLine, error)
	UpdateCartQuantity(ctx context.Context, token, cartID string, quantity int) error
	DeleteCartItem(ctx context.Context, token, cartID string) error
	ListPaymentMethods(ctx context.Context, token string) ([]travel.PaymentMethod, error)
}

// StateStore persists the per-session selection set and payment choice.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartStateKey(sessionID string) string
}

// Service owns the session-scoped cart workflow: the line mirror, the
// selection set, and the chosen payment method. Lines are always re-fetched
// after a mutation; the local mirror is never authoritative.
type Service interface {
	Load(ctx context.Context, sess session.Session) (*View, error)
	SetQuantity(ctx context.Context, sess session.Session, lineID string, quantity int) (*View, error)
	RemoveLine(ctx context.Context, sess session.Session, lineID string) (*View, error)
	ToggleSelection(ctx context.Context, sess session.Session, lineID string) (*View, error)
	ToggleSelectAll(ctx context.Context, sess session.Session) (*View, error)
	ChoosePaymentMethod(ctx context.Context, sess session.Session, methodID string) (*View, error)
	ListPaymentMethods(ctx context.Context, sess session.Session) ([]travel.PaymentMethod, error)
	CheckoutState(ctx context.Context, sess session.Session) (State, error)
	ClearState(ctx context.Context, sess session.Session) error
}

// View is what the cart screen renders: lines, the selection, the payment
// choice, and the total over selected lines only.
type View struct {
	Lines           []travel.CartLine `json:"lines"`
	Selected        []string          `json:"selected"`
	PaymentMethodID string            `json:"paymentMethodId,omitempty"`
	Total           decimal.Decimal   `json:"total"`
}

// State is the slice of session state the checkout orchestrator consumes.
// Selected preserves insertion order.
type State struct {
	Selected        []string
	PaymentMethodID string
}

// persisted is the redis-stored session state. Initialized distinguishes
// "first load, default to select-all" from "user deselected everything".
type persisted struct {
	Initialized     bool     `json:"initialized"`
	Selected        []string `json:"selected"`
	PaymentMethodID string   `json:"payment_method_id,omitempty"`
}

type ServiceParams struct {
	API      TravelAPI
	Store    StateStore
	StateTTL time.Duration
}

type service struct {
	api      TravelAPI
	store    StateStore
	stateTTL time.Duration
}

const defaultStateTTL = 72 * time.Hour

func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "travel api required")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "state store required")
	}
	ttl := params.StateTTL
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &service{api: params.API, store: params.Store, stateTTL: ttl}, nil
}

func (s *service) Load(ctx context.Context, sess session.Session) (*View, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}

	lines, err := s.api.GetCart(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, sess, lines)
}

func (s *service) SetQuantity(ctx context.Context, sess session.Session, lineID string, quantity int) (*View, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}
	if lineID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line id required")
	}

	// Quantities below 1 clamp to 1 rather than deleting the line. The clamp
	// happens before any upstream call.
	if quantity < 1 {
		quantity = 1
	}

	if err := s.api.UpdateCartQuantity(ctx, sess.Token, lineID, quantity); err != nil {
		return nil, err
	}
	return s.Load(ctx, sess)
}

func (s *service) RemoveLine(ctx context.Context, sess session.Session, lineID string) (*View, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}
	if lineID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line id required")
	}

	if err := s.api.DeleteCartItem(ctx, sess.Token, lineID); err != nil {
		return nil, err
	}

	// Prune eagerly; Load would prune too, but the removal must hold even if
	// the follow-up fetch fails.
	state, err := s.loadState(ctx, sess)
	if err == nil {
		state.Selected = removeID(state.Selected, lineID)
		_ = s.saveState(ctx, sess, state)
	}

	return s.Load(ctx, sess)
}

func (s *service) ToggleSelection(ctx context.Context, sess session.Session, lineID string) (*View, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}

	lines, err := s.api.GetCart(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	if !containsLine(lines, lineID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}

	view, err := s.reconcile(ctx, sess, lines)
	if err != nil {
		return nil, err
	}

	state, err := s.loadState(ctx, sess)
	if err != nil {
		return nil, err
	}
	if containsID(state.Selected, lineID) {
		state.Selected = removeID(state.Selected, lineID)
	} else {
		state.Selected = append(state.Selected, lineID)
	}
	if err := s.saveState(ctx, sess, state); err != nil {
		return nil, err
	}

	view.Selected = state.Selected
	view.Total = ComputeTotal(view.Lines, state.Selected)
	return view, nil
}

func (s *service) ToggleSelectAll(ctx context.Context, sess session.Session) (*View, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}

	lines, err := s.api.GetCart(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	view, err := s.reconcile(ctx, sess, lines)
	if err != nil {
		return nil, err
	}

	state, err := s.loadState(ctx, sess)
	if err != nil {
		return nil, err
	}

	// Select all unless everything is already selected, then select none.
	if len(state.Selected) == len(lines) {
		state.Selected = []string{}
	} else {
		state.Selected = lineIDs(lines)
	}
	if err := s.saveState(ctx, sess, state); err != nil {
		return nil, err
	}

	view.Selected = state.Selected
	view.Total = ComputeTotal(view.Lines, state.Selected)
	return view, nil
}

func (s *service) ChoosePaymentMethod(ctx context.Context, sess session.Session, methodID string) (*View, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}
	if methodID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id required")
	}

	methods, err := s.api.ListPaymentMethods(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	known := false
	for _, m := range methods {
		if m.ID == methodID {
			known = true
			break
		}
	}
	if !known {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	state, err := s.loadState(ctx, sess)
	if err != nil {
		return nil, err
	}
	state.PaymentMethodID = methodID
	if err := s.saveState(ctx, sess, state); err != nil {
		return nil, err
	}

	return s.Load(ctx, sess)
}

func (s *service) ListPaymentMethods(ctx context.Context, sess session.Session) ([]travel.PaymentMethod, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}
	return s.api.ListPaymentMethods(ctx, sess.Token)
}

func (s *service) CheckoutState(ctx context.Context, sess session.Session) (State, error) {
	state, err := s.loadState(ctx, sess)
	if err != nil {
		return State{}, err
	}
	return State{
		Selected:        state.Selected,
		PaymentMethodID: state.PaymentMethodID,
	}, nil
}

func (s *service) ClearState(ctx context.Context, sess session.Session) error {
	return s.store.Del(ctx, s.store.CartStateKey(sess.ID))
}

// reconcile merges upstream lines with stored state: first load defaults to
// select-all, later loads prune ids that no longer exist.
func (s *service) reconcile(ctx context.Context, sess session.Session, lines []travel.CartLine) (*View, error) {
	state, err := s.loadState(ctx, sess)
	if err != nil {
		return nil, err
	}

	if !state.Initialized {
		state.Initialized = true
		state.Selected = lineIDs(lines)
	} else {
		state.Selected = pruneSelection(state.Selected, lines)
	}

	if err := s.saveState(ctx, sess, state); err != nil {
		return nil, err
	}

	return &View{
		Lines:           lines,
		Selected:        state.Selected,
		PaymentMethodID: state.PaymentMethodID,
		Total:           ComputeTotal(lines, state.Selected),
	}, nil
}

func (s *service) loadState(ctx context.Context, sess session.Session) (persisted, error) {
	raw, err := s.store.Get(ctx, s.store.CartStateKey(sess.ID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return persisted{Selected: []string{}}, nil
		}
		return persisted{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart state")
	}

	var state persisted
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// Corrupt state resets to the first-load default.
		return persisted{Selected: []string{}}, nil
	}
	if state.Selected == nil {
		state.Selected = []string{}
	}
	return state, nil
}

func (s *service) saveState(ctx context.Context, sess session.Session, state persisted) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart state")
	}
	if err := s.store.Set(ctx, s.store.CartStateKey(sess.ID), string(payload), s.stateTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart state")
	}
	return nil
}

// ComputeTotal sums price_discount x quantity over selected lines only.
// Unselected lines never contribute; an empty selection totals zero.
func ComputeTotal(lines []travel.CartLine, selected []string) decimal.Decimal {
	set := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		set[id] = struct{}{}
	}

	total := decimal.Zero
	for _, line := range lines {
		if _, ok := set[line.ID]; !ok {
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		total = total.Add(line.Activity.PriceDiscount.Mul(qty))
	}
	return total
}

func pruneSelection(selected []string, lines []travel.CartLine) []string {
	existing := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		existing[line.ID] = struct{}{}
	}
	kept := make([]string, 0, len(selected))
	for _, id := range selected {
		if _, ok := existing[id]; ok {
			kept = append(kept, id)
		}
	}
	return kept
}

func lineIDs(lines []travel.CartLine) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ID)
	}
	return ids
}

func containsLine(lines []travel.CartLine, id string) bool {
	for _, line := range lines {
		if line.ID == id {
			return true
		}
	}
	return false
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	kept := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			kept = append(kept, candidate)
		}
	}
	return kept
}
