package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService interface {
	Record(ctx context.Context, actorID uuid.UUID, req dto.RecordPaymentRequest) (*dto.PaymentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error)
	List(ctx context.Context, filter dto.PaymentFilter) (*dto.PaymentListResponse, error)
	ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]dto.PaymentResponse, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	ledgerRepo  repository.LedgerRepository
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	ledgerRepo repository.LedgerRepository,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Record ────────────────────────────────────────────────────────────────────
// One atomic unit: create the Payment; when a booking is linked, bridge
// it into the ledger (customer_payment debit or customer_refund credit)
// and recompute the booking's payment_status. A payment with no booking
// creates the row only; that is the standalone ledger use case, not an
// error. Payments are append-only facts: there is no update path, so the
// bridge runs exactly once per payment.

func (s *paymentService) Record(ctx context.Context, actorID uuid.UUID, req dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	txType := req.TransactionType
	if txType == "" {
		txType = model.TransactionPayment
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("payment amount must be positive")
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		date = parsed
	}

	var booking *model.Booking
	if req.BookingID != nil {
		bid, err := uuid.Parse(*req.BookingID)
		if err != nil {
			return nil, fmt.Errorf("invalid booking_id: %w", err)
		}
		booking, err = s.bookingRepo.FindByID(ctx, bid)
		if err != nil {
			return nil, ErrBookingNotFound
		}
		if booking.Status == model.BookingStatusCancelled {
			return nil, ErrBookingCancelled
		}
	}

	payment := model.Payment{
		Amount:          req.Amount,
		Method:          req.Method,
		TransactionType: txType,
		Date:            date,
		Reference:       req.Reference,
		CreatedByID:     &actorID,
	}
	if booking != nil {
		payment.BookingID = &booking.ID
	}

	var newStatus string
	txErr := runTx(ctx, s.paymentRepo.DB(), func(tx *gorm.DB) error {
		if booking != nil {
			// Re-check under the transaction; a concurrent cancellation
			// between the read above and this point must win.
			fresh, err := s.bookingRepo.FindByIDTx(tx, booking.ID)
			if err != nil {
				return ErrBookingNotFound
			}
			if fresh.Status == model.BookingStatusCancelled {
				return ErrBookingCancelled
			}
		}
		if err := s.paymentRepo.CreateTx(tx, &payment); err != nil {
			return err
		}
		if booking == nil {
			return nil
		}
		status, err := bridgePaymentTx(tx, s.ledgerRepo, s.paymentRepo, s.bookingRepo, booking, &payment)
		if err != nil {
			return err
		}
		newStatus = status
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := paymentToResponse(&payment)
	if booking != nil {
		resp.BookingRef = &booking.Ref
		resp.BookingPaymentStatus = &newStatus
	}
	return resp, nil
}

// bridgePaymentTx posts the ledger entry for one new payment and
// recomputes the booking's payment_status inside the same transaction.
// The status write is skipped when unchanged. Shared with the booking
// cancellation flow, which synthesizes a refund payment through the
// same path.
func bridgePaymentTx(
	tx *gorm.DB,
	ledgerRepo repository.LedgerRepository,
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	booking *model.Booking,
	p *model.Payment,
) (string, error) {
	entry := model.LedgerEntry{
		Date:        p.Date,
		Account:     bookingAccount(booking),
		BookingID:   &booking.ID,
		CreatedByID: p.CreatedByID,
	}
	switch p.TransactionType {
	case model.TransactionPayment:
		entry.EntryType = model.EntryCustomerPayment
		entry.Debit = p.Amount
		entry.Credit = decimal.Zero
	case model.TransactionRefund:
		entry.EntryType = model.EntryCustomerRefund
		entry.Debit = decimal.Zero
		entry.Credit = p.Amount
	default:
		return "", fmt.Errorf("unknown transaction type %q", p.TransactionType)
	}
	if err := ledgerRepo.CreateTx(tx, &entry); err != nil {
		return "", err
	}

	netPaid, err := paymentRepo.NetPaidTx(tx, booking.ID)
	if err != nil {
		return "", err
	}

	status := derivePaymentStatus(netPaid, booking.TotalAmount)
	if status != booking.PaymentStatus {
		if err := bookingRepo.UpdateFieldsTx(tx, booking.ID, map[string]interface{}{
			"payment_status": status,
		}); err != nil {
			return "", err
		}
		booking.PaymentStatus = status
	}
	return status, nil
}

// derivePaymentStatus applies the status rule:
// net ≥ total > 0 ⇒ paid; 0 < net < total ⇒ advance; net < 0 ⇒ refunded;
// else pending.
func derivePaymentStatus(netPaid, totalAmount decimal.Decimal) string {
	switch {
	case totalAmount.IsPositive() && netPaid.GreaterThanOrEqual(totalAmount):
		return model.PaymentStatusPaid
	case netPaid.IsPositive():
		return model.PaymentStatusAdvance
	case netPaid.IsNegative():
		return model.PaymentStatusRefunded
	default:
		return model.PaymentStatusPending
	}
}

// bookingAccount is the stable account label for a booking's cash entries.
func bookingAccount(b *model.Booking) string {
	clientName := ""
	if b.Client != nil {
		clientName = b.Client.Name
	}
	if clientName == "" {
		return "Booking " + b.Ref
	}
	return fmt.Sprintf("%s (%s)", clientName, b.Ref)
}

func (s *paymentService) Get(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error) {
	p, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	resp := paymentToResponse(p)
	if p.Booking != nil {
		resp.BookingRef = &p.Booking.Ref
	}
	return resp, nil
}

func (s *paymentService) List(ctx context.Context, filter dto.PaymentFilter) (*dto.PaymentListResponse, error) {
	payments, total, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		resp := paymentToResponse(&payments[i])
		if payments[i].Booking != nil {
			resp.BookingRef = &payments[i].Booking.Ref
		}
		items = append(items, *resp)
	}
	return &dto.PaymentListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ListForBooking returns the payment history of one booking, the ghost
// and auto-refund rows included.
func (s *paymentService) ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]dto.PaymentResponse, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	payments, err := s.paymentRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		resp := paymentToResponse(&payments[i])
		resp.BookingRef = &booking.Ref
		out = append(out, *resp)
	}
	return out, nil
}

func paymentToResponse(p *model.Payment) *dto.PaymentResponse {
	resp := &dto.PaymentResponse{
		ID:              p.ID.String(),
		Amount:          p.Amount,
		Method:          p.Method,
		TransactionType: p.TransactionType,
		Date:            p.Date.Format("2006-01-02"),
		Reference:       p.Reference,
	}
	if p.BookingID != nil {
		id := p.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}
