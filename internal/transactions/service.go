package transactions

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/travelia-app/travelia-backend/internal/notify"
	"github.com/travelia-app/travelia-backend/internal/session"
	"github.com/travelia-app/travelia-backend/pkg/enums"
	pkgerrors "github.com/travelia-app/travelia-backend/pkg/errors"
	"github.com/travelia-app/travelia-backend/pkg/travel"
)

// TravelAPI is the slice of the upstream client the transaction flows need.
type TravelAPI interface {
	ListMyTransactions(ctx context.Context, token string) ([]travel.Transaction, error)
	ListAllTransactions(ctx context.Context, token string) ([]travel.Transaction, error)
	GetTransaction(ctx context.Context, token, id string) (*travel.Transaction, error)
	UploadImage(ctx context.Context, token, filename, contentType string, file io.Reader) (string, error)
	AttachProofPayment(ctx context.Context, token, id, proofURL string) error
	UpdateTransactionStatus(ctx context.Context, token, id, status string) error
}

// ProofUpload is the incoming proof-of-payment file.
type ProofUpload struct {
	Filename    string
	ContentType string
	Size        int64
	File        io.Reader
}

// Service covers the end-user transaction list and proof flow plus the admin
// status editor.
type Service interface {
	ListMine(ctx context.Context, sess session.Session) ([]travel.Transaction, error)
	ListAll(ctx context.Context, sess session.Session) ([]travel.Transaction, error)
	AttachProof(ctx context.Context, sess session.Session, transactionID string, upload ProofUpload) (*travel.Transaction, error)
	UpdateStatus(ctx context.Context, sess session.Session, transactionID string, status enums.TransactionStatus) error
}

type ServiceParams struct {
	API            TravelAPI
	Notifier       notify.Service
	MaxUploadBytes int64
}

type service struct {
	api            TravelAPI
	notifier       notify.Service
	maxUploadBytes int64
}

const defaultMaxUploadBytes = 5 << 20

func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "travel api required")
	}
	max := params.MaxUploadBytes
	if max <= 0 {
		max = defaultMaxUploadBytes
	}
	return &service{
		api:            params.API,
		notifier:       params.Notifier,
		maxUploadBytes: max,
	}, nil
}

func (s *service) ListMine(ctx context.Context, sess session.Session) ([]travel.Transaction, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}
	return s.api.ListMyTransactions(ctx, sess.Token)
}

func (s *service) ListAll(ctx context.Context, sess session.Session) ([]travel.Transaction, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}
	return s.api.ListAllTransactions(ctx, sess.Token)
}

// AttachProof validates the file locally, uploads it, and records the hosted
// URL on the transaction. Proof is one-shot: once a URL is attached the
// transaction no longer accepts another.
func (s *service) AttachProof(ctx context.Context, sess session.Session, transactionID string, upload ProofUpload) (*travel.Transaction, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}
	if transactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}

	// Local gate: violations never reach the network.
	if err := s.validateProof(upload); err != nil {
		return nil, err
	}

	tx, err := s.api.GetTransaction(ctx, sess.Token, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status != enums.TransactionStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is not awaiting payment")
	}
	if tx.ProofPaymentURL != "" {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "proof of payment already attached")
	}

	hostedURL, err := s.api.UploadImage(ctx, sess.Token, upload.Filename, upload.ContentType, upload.File)
	if err != nil {
		s.notify(ctx, sess, enums.NoticeLevelError, "proof upload failed, please retry")
		return nil, err
	}

	if err := s.api.AttachProofPayment(ctx, sess.Token, transactionID, hostedURL); err != nil {
		// The transaction stays pending with no proof recorded; the user may
		// retry with the same or another file.
		s.notify(ctx, sess, enums.NoticeLevelError, "could not attach proof of payment, please retry")
		return nil, err
	}

	s.notify(ctx, sess, enums.NoticeLevelSuccess, "proof of payment attached")

	refreshed, err := s.api.GetTransaction(ctx, sess.Token, transactionID)
	if err != nil {
		return nil, err
	}
	return refreshed, nil
}

// UpdateStatus posts a new status value. Anything outside the fixed enum is
// rejected before any upstream call; upstream enforces the admin role.
func (s *service) UpdateStatus(ctx context.Context, sess session.Session, transactionID string, status enums.TransactionStatus) error {
	if !sess.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session token")
	}
	if transactionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if !status.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown transaction status").
			WithDetails(map[string]any{"allowed": []enums.TransactionStatus{
				enums.TransactionStatusPending,
				enums.TransactionStatusSuccess,
				enums.TransactionStatusFailed,
				enums.TransactionStatusCancelled,
			}})
	}

	if err := s.api.UpdateTransactionStatus(ctx, sess.Token, transactionID, string(status)); err != nil {
		s.notify(ctx, sess, enums.NoticeLevelError, "status update failed")
		return err
	}

	s.notify(ctx, sess, enums.NoticeLevelSuccess, fmt.Sprintf("transaction marked %s", status))
	return nil
}

func (s *service) validateProof(upload ProofUpload) error {
	if upload.File == nil || upload.Size <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "proof file required")
	}
	if upload.Size > s.maxUploadBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, "proof file exceeds the size limit").
			WithDetails(map[string]any{"max_bytes": s.maxUploadBytes})
	}

	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(upload.ContentType))
	if err != nil || mediaType == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "proof file content type is invalid")
	}
	if !strings.HasPrefix(strings.ToLower(mediaType), "image/") {
		return pkgerrors.New(pkgerrors.CodeValidation, "proof of payment must be an image")
	}
	return nil
}

func (s *service) notify(ctx context.Context, sess session.Session, level enums.NoticeLevel, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Push(ctx, sess.ID, level, message)
}
