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

type BookingService interface {
	Create(ctx context.Context, actorID uuid.UUID, req dto.CreateBookingRequest) (*dto.BookingResponse, error)
	Update(ctx context.Context, id uuid.UUID, actorID uuid.UUID, req dto.UpdateBookingRequest) (*dto.BookingResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*dto.BookingResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error)
	GetByRef(ctx context.Context, ref string) (*dto.BookingResponse, error)
	List(ctx context.Context, filter dto.BookingFilter) (*dto.BookingListResponse, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	clientRepo  repository.ClientRepository
	paymentRepo repository.PaymentRepository
	ledgerRepo  repository.LedgerRepository
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	clientRepo repository.ClientRepository,
	paymentRepo repository.PaymentRepository,
	ledgerRepo repository.LedgerRepository,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		clientRepo:  clientRepo,
		paymentRepo: paymentRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// refPrefixes maps the operation verb to the reference prefix.
var refPrefixes = map[string]string{
	model.OperationIssue:  "BK",
	model.OperationChange: "CHG",
	model.OperationRefund: "REF",
}

// ── Create ────────────────────────────────────────────────────────────────────
// Validates the request (type, parent linkage, payment action fields),
// generates the unique reference, persists the booking and, in the same
// transaction, posts accrual entries when the booking is created already
// confirmed and bridges the optional initial payment.

func (s *bookingService) Create(ctx context.Context, actorID uuid.UUID, req dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if !validBookingType(req.BookingType) {
		return nil, fmt.Errorf("unknown booking type %q", req.BookingType)
	}

	opType := req.OperationType
	if opType == "" {
		opType = model.OperationIssue
	}

	status := normalizeStatus(req.Status)
	if status == "" {
		status = model.BookingStatusDraft
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client_id: %w", err)
	}
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, ErrClientNotFound
	}

	var parent *model.Booking
	if req.ParentBookingID != nil {
		pid, err := uuid.Parse(*req.ParentBookingID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent_booking_id: %w", err)
		}
		parent, err = s.bookingRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, errors.New("parent booking not found")
		}
		if err := validateParent(parent, clientID); err != nil {
			return nil, err
		}
	} else if opType != model.OperationIssue {
		return nil, fmt.Errorf("a %s operation requires a parent booking", opType)
	}

	// Command-center payment action: a method without an amount is the
	// classic half-filled form mistake, rejected before any write.
	if req.PaymentMethod != nil && req.PaymentAmount == nil {
		return nil, errors.New("payment_amount is required when payment_method is set")
	}
	if req.PaymentAmount != nil && req.PaymentAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("payment_amount must be positive")
	}

	booking := model.Booking{
		ClientID:              clientID,
		BookingType:           req.BookingType,
		OperationType:         opType,
		Status:                status,
		PaymentStatus:         model.PaymentStatusPending,
		SupplierPaymentStatus: model.SupplierUnpaid,
		Description:           req.Description,
		TotalAmount:           req.TotalAmount,
		SupplierCost:          req.SupplierCost,
		CreatedByID:           &actorID,
	}
	if parent != nil {
		booking.ParentBookingID = &parent.ID
	}
	if req.AssignedToID != nil {
		aid, err := uuid.Parse(*req.AssignedToID)
		if err != nil {
			return nil, fmt.Errorf("invalid assigned_to_id: %w", err)
		}
		booking.AssignedToID = &aid
	}

	var initialPayment *model.Payment
	txErr := runTx(ctx, s.bookingRepo.DB(), func(tx *gorm.DB) error {
		ref, err := s.generateRefTx(ctx, tx, opType)
		if err != nil {
			return err
		}
		booking.Ref = ref

		if err := s.bookingRepo.Create(ctx, tx, &booking); err != nil {
			return err
		}
		booking.Client = client

		if booking.Status == model.BookingStatusConfirmed {
			if err := s.postAccrualTx(tx, &booking, actorID); err != nil {
				return err
			}
		}

		if req.PaymentAmount != nil {
			method := model.MethodCash
			if req.PaymentMethod != nil {
				method = *req.PaymentMethod
			}
			p := model.Payment{
				BookingID:       &booking.ID,
				Amount:          *req.PaymentAmount,
				Method:          method,
				TransactionType: model.TransactionPayment,
				Date:            time.Now(),
				CreatedByID:     &actorID,
			}
			if err := s.paymentRepo.CreateTx(tx, &p); err != nil {
				return err
			}
			if _, err := bridgePaymentTx(tx, s.ledgerRepo, s.paymentRepo, s.bookingRepo, &booking, &p); err != nil {
				return err
			}
			initialPayment = &p
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if initialPayment != nil {
		booking.Payments = append(booking.Payments, *initialPayment)
	}
	return bookingToResponse(&booking), nil
}

// generateRefTx builds "PREFIX-yyyymmdd-NNN" from today's per-prefix
// sequence and retries with incremented sequence until the ref is free.
func (s *bookingService) generateRefTx(ctx context.Context, tx *gorm.DB, opType string) (string, error) {
	prefix, ok := refPrefixes[opType]
	if !ok {
		return "", fmt.Errorf("unknown operation type %q", opType)
	}
	day := time.Now().Format("20060102")
	base := fmt.Sprintf("%s-%s-", prefix, day)

	count, err := s.bookingRepo.CountByRefPrefix(ctx, tx, base)
	if err != nil {
		return "", err
	}
	for seq := count + 1; seq <= count+1000; seq++ {
		ref := fmt.Sprintf("%s%03d", base, seq)
		exists, err := s.bookingRepo.ExistsRef(ctx, tx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", errors.New("could not allocate a unique booking reference")
}

// validateParent enforces the change/refund linkage rules: the parent
// must belong to the same client, must itself be an issue operation, and
// cannot already be a child (one level deep).
func validateParent(parent *model.Booking, clientID uuid.UUID) error {
	if parent.ClientID != clientID {
		return errors.New("parent booking belongs to a different client")
	}
	if parent.OperationType != model.OperationIssue {
		return errors.New("parent booking must be an issue operation")
	}
	if parent.ParentBookingID != nil {
		return errors.New("parent booking is itself a child booking")
	}
	return nil
}

// postAccrualTx writes the accrual entries for a confirmed booking,
// exactly once per booking: sale_revenue credit for total_amount and,
// when supplier cost exists, a supplier_cost credit (a payable). The
// is_ledger_posted flag is flipped with a field-scoped update so the
// posting cycle cannot re-enter.
func (s *bookingService) postAccrualTx(tx *gorm.DB, b *model.Booking, actorID uuid.UUID) error {
	if b.IsLedgerPosted {
		return nil // idempotency skip
	}

	now := time.Now()
	if b.TotalAmount.IsPositive() {
		entry := model.LedgerEntry{
			Date:        now,
			Account:     bookingAccount(b),
			EntryType:   model.EntrySaleRevenue,
			Debit:       decimal.Zero,
			Credit:      b.TotalAmount,
			BookingID:   &b.ID,
			CreatedByID: &actorID,
		}
		if err := s.ledgerRepo.CreateTx(tx, &entry); err != nil {
			return err
		}
	}
	if b.SupplierCost.IsPositive() {
		entry := model.LedgerEntry{
			Date:        now,
			Account:     supplierCostAccount(b),
			EntryType:   model.EntrySupplierCost,
			Debit:       decimal.Zero,
			Credit:      b.SupplierCost,
			BookingID:   &b.ID,
			CreatedByID: &actorID,
		}
		if err := s.ledgerRepo.CreateTx(tx, &entry); err != nil {
			return err
		}
	}

	if err := s.bookingRepo.UpdateFieldsTx(tx, b.ID, map[string]interface{}{
		"is_ledger_posted": true,
	}); err != nil {
		return err
	}
	b.IsLedgerPosted = true
	return nil
}

// supplierCostAccount is the stable payable label for a booking's
// supplier cost.
func supplierCostAccount(b *model.Booking) string {
	return "Supplier cost " + b.Ref
}

// ── Update ────────────────────────────────────────────────────────────────────
// Snapshot-before-mutate: the pre-update figures are captured first so
// that amount changes after posting produce delta entries, never the
// absolute new value. Repeated saves with unchanged figures post nothing.

func (s *bookingService) Update(ctx context.Context, id uuid.UUID, actorID uuid.UUID, req dto.UpdateBookingRequest) (*dto.BookingResponse, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil, ErrBookingCancelled
	}

	if req.Status != nil && normalizeStatus(*req.Status) == model.BookingStatusCancelled {
		return s.Cancel(ctx, id, actorID)
	}

	// Pre-update snapshot
	oldTotal := booking.TotalAmount
	oldCost := booking.SupplierCost
	oldStatus := booking.Status

	if req.Status != nil {
		booking.Status = normalizeStatus(*req.Status)
	}
	if req.Description != nil {
		booking.Description = *req.Description
	}
	if req.TotalAmount != nil {
		booking.TotalAmount = *req.TotalAmount
	}
	if req.SupplierCost != nil {
		booking.SupplierCost = *req.SupplierCost
	}
	if req.BookingType != nil {
		if !validBookingType(*req.BookingType) {
			return nil, fmt.Errorf("unknown booking type %q", *req.BookingType)
		}
		booking.BookingType = *req.BookingType
	}
	if req.AssignedToID != nil {
		aid, err := uuid.Parse(*req.AssignedToID)
		if err != nil {
			return nil, fmt.Errorf("invalid assigned_to_id: %w", err)
		}
		booking.AssignedToID = &aid
	}

	txErr := runTx(ctx, s.bookingRepo.DB(), func(tx *gorm.DB) error {
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}

		if !booking.IsLedgerPosted {
			// First posting happens on the draft→confirmed transition.
			if booking.Status == model.BookingStatusConfirmed && oldStatus != model.BookingStatusConfirmed {
				if err := s.postAccrualTx(tx, booking, actorID); err != nil {
					return err
				}
			}
			return nil
		}

		// Already posted: figure changes produce delta entries.
		if err := s.postDeltaTx(tx, booking, actorID, model.EntrySaleRevenue,
			bookingAccount(booking), booking.TotalAmount.Sub(oldTotal)); err != nil {
			return err
		}
		if err := s.postDeltaTx(tx, booking, actorID, model.EntrySupplierCost,
			supplierCostAccount(booking), booking.SupplierCost.Sub(oldCost)); err != nil {
			return err
		}

		// A changed sale price can flip the derived payment status.
		if !booking.TotalAmount.Equal(oldTotal) {
			netPaid, err := s.paymentRepo.NetPaidTx(tx, booking.ID)
			if err != nil {
				return err
			}
			status := derivePaymentStatus(netPaid, booking.TotalAmount)
			if status != booking.PaymentStatus {
				if err := s.bookingRepo.UpdateFieldsTx(tx, booking.ID, map[string]interface{}{
					"payment_status": status,
				}); err != nil {
					return err
				}
				booking.PaymentStatus = status
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return bookingToResponse(booking), nil
}

// postDeltaTx writes one adjustment entry for a figure change on an
// already-posted booking. A positive delta lands on the entry type's
// normal credit side, a negative delta on the debit side; zero posts
// nothing.
func (s *bookingService) postDeltaTx(tx *gorm.DB, b *model.Booking, actorID uuid.UUID, entryType, account string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	entry := model.LedgerEntry{
		Date:        time.Now(),
		Account:     account,
		EntryType:   entryType,
		BookingID:   &b.ID,
		CreatedByID: &actorID,
	}
	if delta.IsPositive() {
		entry.Debit = decimal.Zero
		entry.Credit = delta
	} else {
		entry.Debit = delta.Abs()
		entry.Credit = decimal.Zero
	}
	return s.ledgerRepo.CreateTx(tx, &entry)
}

// ── Cancel ────────────────────────────────────────────────────────────────────
// net_balance = paid − refunded; when the client is still owed money a
// full cash refund Payment is synthesized through the regular payment
// bridge, then the cancelled status is persisted. One transaction.

func (s *bookingService) Cancel(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*dto.BookingResponse, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil, ErrBookingCancelled
	}

	txErr := runTx(ctx, s.bookingRepo.DB(), func(tx *gorm.DB) error {
		netBalance := booking.PaidAmount()
		if netBalance.IsPositive() {
			ref := "auto refund on cancellation"
			refund := model.Payment{
				BookingID:       &booking.ID,
				Amount:          netBalance,
				Method:          model.MethodCash,
				TransactionType: model.TransactionRefund,
				Date:            time.Now(),
				Reference:       &ref,
				CreatedByID:     &actorID,
			}
			if err := s.paymentRepo.CreateTx(tx, &refund); err != nil {
				return err
			}
			if _, err := bridgePaymentTx(tx, s.ledgerRepo, s.paymentRepo, s.bookingRepo, booking, &refund); err != nil {
				return err
			}
			booking.Payments = append(booking.Payments, refund)
		}

		if err := s.bookingRepo.UpdateFieldsTx(tx, booking.ID, map[string]interface{}{
			"status": model.BookingStatusCancelled,
		}); err != nil {
			return err
		}
		booking.Status = model.BookingStatusCancelled
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return bookingToResponse(booking), nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *bookingService) Get(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	return bookingToResponse(booking), nil
}

func (s *bookingService) GetByRef(ctx context.Context, ref string) (*dto.BookingResponse, error) {
	booking, err := s.bookingRepo.FindByRef(ctx, ref)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	return bookingToResponse(booking), nil
}

func (s *bookingService) List(ctx context.Context, filter dto.BookingFilter) (*dto.BookingListResponse, error) {
	bookings, total, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BookingListItem, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		item := dto.BookingListItem{
			ID:                    b.ID.String(),
			Ref:                   b.Ref,
			BookingType:           b.BookingType,
			OperationType:         b.OperationType,
			Status:                b.Status,
			PaymentStatus:         b.PaymentStatus,
			SupplierPaymentStatus: b.SupplierPaymentStatus,
			TotalAmount:           b.TotalAmount,
			PaidAmount:            b.PaidAmount(),
			Outstanding:           b.Outstanding(),
			CreatedAt:             b.CreatedAt.Format(time.RFC3339),
		}
		if b.Client != nil {
			item.ClientName = b.Client.Name
		}
		items = append(items, item)
	}
	return &dto.BookingListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func validBookingType(t string) bool {
	for _, bt := range model.BookingTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// normalizeStatus maps the legacy "quote" alias onto draft.
func normalizeStatus(status string) string {
	if status == "quote" {
		return model.BookingStatusDraft
	}
	return status
}

func bookingToResponse(b *model.Booking) *dto.BookingResponse {
	resp := &dto.BookingResponse{
		ID:                    b.ID.String(),
		Ref:                   b.Ref,
		ClientID:              b.ClientID.String(),
		BookingType:           b.BookingType,
		OperationType:         b.OperationType,
		Status:                b.Status,
		PaymentStatus:         b.PaymentStatus,
		SupplierPaymentStatus: b.SupplierPaymentStatus,
		Description:           b.Description,
		TotalAmount:           b.TotalAmount,
		SupplierCost:          b.SupplierCost,
		PaidAmount:            b.PaidAmount(),
		Outstanding:           b.Outstanding(),
		IsLedgerPosted:        b.IsLedgerPosted,
		CreatedAt:             b.CreatedAt.Format(time.RFC3339),
	}
	if b.Client != nil {
		resp.ClientName = b.Client.Name
	}
	if b.ParentBookingID != nil {
		id := b.ParentBookingID.String()
		resp.ParentBookingID = &id
		if b.ParentBooking != nil {
			resp.ParentBookingRef = &b.ParentBooking.Ref
		}
	}
	for i := range b.Payments {
		p := &b.Payments[i]
		resp.Payments = append(resp.Payments, dto.PaymentLine{
			ID:              p.ID.String(),
			Amount:          p.Amount,
			Method:          p.Method,
			TransactionType: p.TransactionType,
			Date:            p.Date.Format("2006-01-02"),
			Reference:       p.Reference,
		})
	}
	return resp
}
