package enums

// TransactionStatus is the lifecycle state of a purchase record. The end-user
// flow never sets it directly; terminal transitions are admin driven.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSuccess   TransactionStatus = "success"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

var transactionStatuses = map[TransactionStatus]struct{}{
	TransactionStatusPending:   {},
	TransactionStatusSuccess:   {},
	TransactionStatusFailed:    {},
	TransactionStatusCancelled: {},
}

func (s TransactionStatus) Valid() bool {
	_, ok := transactionStatuses[s]
	return ok
}

// Terminal reports whether no further transitions are allowed.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case TransactionStatusSuccess, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	default:
		return false
	}
}
