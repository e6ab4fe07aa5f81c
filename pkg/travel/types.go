package travel

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/travelia-app/travelia-backend/pkg/enums"
)

// CartLine is one activity pending purchase. The server owns it; this
// service only mirrors what upstream returns.
type CartLine struct {
	ID       string          `json:"id"`
	Quantity int             `json:"quantity"`
	Activity ActivitySummary `json:"activity"`
}

// ActivitySummary is the read-only activity snapshot embedded in a cart line.
type ActivitySummary struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	ImageURLs     []string        `json:"imageUrls"`
	Price         decimal.Decimal `json:"price"`
	PriceDiscount decimal.Decimal `json:"price_discount"`
}

type PaymentMethod struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Transaction is the immutable purchase record created at checkout. Only its
// status (admin) and proof-of-payment URL (owning user) change afterwards.
type Transaction struct {
	ID              string                  `json:"id"`
	InvoiceID       string                  `json:"invoiceId"`
	Status          enums.TransactionStatus `json:"status"`
	TotalAmount     decimal.Decimal         `json:"totalAmount"`
	OrderDate       time.Time               `json:"orderDate"`
	ExpiredDate     time.Time               `json:"expiredDate"`
	PaymentMethod   *PaymentMethod          `json:"payment_method"`
	Items           []TransactionItem       `json:"transaction_items"`
	ProofPaymentURL string                  `json:"proofPaymentUrl,omitempty"`
}

// TransactionItem snapshots an activity at purchase time. Never mutated.
type TransactionItem struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ImageURLs     []string        `json:"imageUrls"`
	Price         decimal.Decimal `json:"price"`
	PriceDiscount decimal.Decimal `json:"price_discount"`
	Quantity      int             `json:"quantity"`
}

type Banner struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

type Promo struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	ImageURL           string          `json:"imageUrl"`
	PromoCode          string          `json:"promo_code"`
	PromoDiscountPrice decimal.Decimal `json:"promo_discount_price"`
	MinimumClaimPrice  decimal.Decimal `json:"minimum_claim_price"`
}

type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

type Activity struct {
	ID            string          `json:"id"`
	CategoryID    string          `json:"categoryId"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ImageURLs     []string        `json:"imageUrls"`
	Price         decimal.Decimal `json:"price"`
	PriceDiscount decimal.Decimal `json:"price_discount"`
	Rating        float64         `json:"rating"`
	TotalReviews  int             `json:"total_reviews"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	Province      string          `json:"province"`
}

type User struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name"`
	Role              enums.Role `json:"role"`
	ProfilePictureURL string     `json:"profilePictureUrl"`
	PhoneNumber       string     `json:"phoneNumber"`
}

// CreateTransactionInput is the checkout payload. CartIDs keep the caller's
// ordering.
type CreateTransactionInput struct {
	CartIDs         []string `json:"cartIds"`
	PaymentMethodID string   `json:"paymentMethodId"`
}
