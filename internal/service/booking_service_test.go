package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBookingSvc() (service.BookingService, *stubBookingRepo, *stubClientRepo, *stubPaymentRepo, *stubLedgerRepo) {
	bookingRepo := newStubBookingRepo()
	clientRepo := newStubClientRepo()
	paymentRepo := &stubPaymentRepo{}
	ledgerRepo := &stubLedgerRepo{}
	svc := service.NewBookingService(bookingRepo, clientRepo, paymentRepo, ledgerRepo)
	return svc, bookingRepo, clientRepo, paymentRepo, ledgerRepo
}

func TestCreateBooking_GeneratesSequentialRefs(t *testing.T) {
	svc, _, clientRepo, _, _ := buildBookingSvc()
	client := clientRepo.seed("Mouna Gharbi")

	day := time.Now().Format("20060102")
	for i := 1; i <= 2; i++ {
		resp, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
			ClientID:    client.ID.String(),
			BookingType: "ticket",
			TotalAmount: decimal.NewFromInt(100),
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("BK-%s-%03d", day, i), resp.Ref)
	}
}

func TestCreateBooking_DraftPostsNothing(t *testing.T) {
	svc, _, clientRepo, _, ledgerRepo := buildBookingSvc()
	client := clientRepo.seed("Hedi")

	resp, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:     client.ID.String(),
		BookingType:  "hotel_out",
		TotalAmount:  decimal.NewFromInt(900),
		SupplierCost: decimal.NewFromInt(600),
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusDraft, resp.Status)
	assert.False(t, resp.IsLedgerPosted)
	assert.Empty(t, ledgerRepo.entries)
}

func TestCreateBooking_ConfirmedPostsAccruals(t *testing.T) {
	svc, _, clientRepo, _, ledgerRepo := buildBookingSvc()
	client := clientRepo.seed("Sonia Mejri")

	resp, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:     client.ID.String(),
		BookingType:  "umrah",
		Status:       model.BookingStatusConfirmed,
		TotalAmount:  decimal.NewFromInt(2500),
		SupplierCost: decimal.NewFromInt(1800),
	})
	require.NoError(t, err)
	assert.True(t, resp.IsLedgerPosted)

	revenue := ledgerRepo.byType(model.EntrySaleRevenue)
	require.Len(t, revenue, 1)
	assert.True(t, revenue[0].Credit.Equal(decimal.NewFromInt(2500)))
	assert.True(t, revenue[0].Debit.IsZero())
	assert.Equal(t, "Sonia Mejri ("+resp.Ref+")", revenue[0].Account)

	cost := ledgerRepo.byType(model.EntrySupplierCost)
	require.Len(t, cost, 1)
	assert.True(t, cost[0].Credit.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, "Supplier cost "+resp.Ref, cost[0].Account)
}

func TestCreateBooking_ZeroCostSkipsSupplierEntry(t *testing.T) {
	svc, _, clientRepo, _, ledgerRepo := buildBookingSvc()
	client := clientRepo.seed("Walid")

	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:    client.ID.String(),
		BookingType: "visa_app",
		Status:      model.BookingStatusConfirmed,
		TotalAmount: decimal.NewFromInt(400),
	})
	require.NoError(t, err)
	assert.Len(t, ledgerRepo.byType(model.EntrySaleRevenue), 1)
	assert.Empty(t, ledgerRepo.byType(model.EntrySupplierCost))
}

func TestCreateBooking_InitialPaymentBridged(t *testing.T) {
	svc, _, clientRepo, paymentRepo, ledgerRepo := buildBookingSvc()
	client := clientRepo.seed("Rim Chaabane")

	amount := decimal.NewFromInt(300)
	method := model.MethodCash
	resp, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:      client.ID.String(),
		BookingType:   "trip",
		TotalAmount:   decimal.NewFromInt(1000),
		PaymentAmount: &amount,
		PaymentMethod: &method,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusAdvance, resp.PaymentStatus)
	require.Len(t, resp.Payments, 1)
	assert.True(t, resp.PaidAmount.Equal(amount))
	assert.True(t, resp.Outstanding.Equal(decimal.NewFromInt(700)))

	require.Len(t, paymentRepo.payments, 1)
	cash := ledgerRepo.byType(model.EntryCustomerPayment)
	require.Len(t, cash, 1)
	assert.True(t, cash[0].Debit.Equal(amount))
}

func TestCreateBooking_MethodWithoutAmountRejected(t *testing.T) {
	svc, _, clientRepo, _, _ := buildBookingSvc()
	client := clientRepo.seed("Yassine")

	method := model.MethodCard
	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:      client.ID.String(),
		BookingType:   "ticket",
		TotalAmount:   decimal.NewFromInt(100),
		PaymentMethod: &method,
	})
	assert.EqualError(t, err, "payment_amount is required when payment_method is set")
}

func TestCreateBooking_ChangeRequiresParent(t *testing.T) {
	svc, _, clientRepo, _, _ := buildBookingSvc()
	client := clientRepo.seed("Imen")

	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:      client.ID.String(),
		BookingType:   "ticket",
		OperationType: model.OperationChange,
		TotalAmount:   decimal.NewFromInt(50),
	})
	assert.EqualError(t, err, "a change operation requires a parent booking")
}

func TestCreateBooking_ParentLinkageRules(t *testing.T) {
	svc, bookingRepo, clientRepo, _, _ := buildBookingSvc()
	client := clientRepo.seed("Fares")
	other := clientRepo.seed("Leila")

	parent := seedBooking(bookingRepo, client, "BK-20260829-001", decimal.NewFromInt(500), decimal.Zero)

	t.Run("different client", func(t *testing.T) {
		pid := parent.ID.String()
		_, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
			ClientID:        other.ID.String(),
			ParentBookingID: &pid,
			BookingType:     "ticket",
			OperationType:   model.OperationRefund,
			TotalAmount:     decimal.NewFromInt(100),
		})
		assert.EqualError(t, err, "parent booking belongs to a different client")
	})

	t.Run("parent not an issue", func(t *testing.T) {
		change := seedBooking(bookingRepo, client, "CHG-20260829-001", decimal.NewFromInt(100), decimal.Zero)
		change.OperationType = model.OperationChange
		pid := change.ID.String()
		_, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
			ClientID:        client.ID.String(),
			ParentBookingID: &pid,
			BookingType:     "ticket",
			OperationType:   model.OperationRefund,
			TotalAmount:     decimal.NewFromInt(100),
		})
		assert.EqualError(t, err, "parent booking must be an issue operation")
	})

	t.Run("parent is itself a child", func(t *testing.T) {
		grand := seedBooking(bookingRepo, client, "BK-20260829-002", decimal.NewFromInt(100), decimal.Zero)
		mid := seedBooking(bookingRepo, client, "BK-20260829-003", decimal.NewFromInt(100), decimal.Zero)
		mid.ParentBookingID = &grand.ID
		pid := mid.ID.String()
		_, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
			ClientID:        client.ID.String(),
			ParentBookingID: &pid,
			BookingType:     "ticket",
			OperationType:   model.OperationChange,
			TotalAmount:     decimal.NewFromInt(100),
		})
		assert.EqualError(t, err, "parent booking is itself a child booking")
	})
}

func TestUpdateBooking_ConfirmPostsOnce(t *testing.T) {
	svc, _, clientRepo, _, ledgerRepo := buildBookingSvc()
	client := clientRepo.seed("Omar")

	created, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:     client.ID.String(),
		BookingType:  "tour",
		TotalAmount:  decimal.NewFromInt(700),
		SupplierCost: decimal.NewFromInt(450),
	})
	require.NoError(t, err)
	require.Empty(t, ledgerRepo.entries)

	id := uuid.MustParse(created.ID)
	confirmed := model.BookingStatusConfirmed
	resp, err := svc.Update(context.Background(), id, uuid.New(), dto.UpdateBookingRequest{Status: &confirmed})
	require.NoError(t, err)
	assert.True(t, resp.IsLedgerPosted)
	assert.Len(t, ledgerRepo.entries, 2)

	// Saving again with unchanged figures posts nothing further.
	_, err = svc.Update(context.Background(), id, uuid.New(), dto.UpdateBookingRequest{Status: &confirmed})
	require.NoError(t, err)
	assert.Len(t, ledgerRepo.entries, 2)
}

func TestUpdateBooking_AmountDeltaPostsAdjustment(t *testing.T) {
	svc, _, clientRepo, _, ledgerRepo := buildBookingSvc()
	client := clientRepo.seed("Sami")

	created, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:    client.ID.String(),
		BookingType: "ticket",
		Status:      model.BookingStatusConfirmed,
		TotalAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	// Raise: +200 lands on the credit side.
	raised := decimal.NewFromInt(1200)
	_, err = svc.Update(context.Background(), id, uuid.New(), dto.UpdateBookingRequest{TotalAmount: &raised})
	require.NoError(t, err)
	revenue := ledgerRepo.byType(model.EntrySaleRevenue)
	require.Len(t, revenue, 2)
	assert.True(t, revenue[1].Credit.Equal(decimal.NewFromInt(200)))
	assert.True(t, revenue[1].Debit.IsZero())

	// Lower: -300 lands on the debit side as an absolute value.
	lowered := decimal.NewFromInt(900)
	_, err = svc.Update(context.Background(), id, uuid.New(), dto.UpdateBookingRequest{TotalAmount: &lowered})
	require.NoError(t, err)
	revenue = ledgerRepo.byType(model.EntrySaleRevenue)
	require.Len(t, revenue, 3)
	assert.True(t, revenue[2].Debit.Equal(decimal.NewFromInt(300)))
	assert.True(t, revenue[2].Credit.IsZero())
}

func TestUpdateBooking_PriceChangeRederivesPaymentStatus(t *testing.T) {
	svc, _, clientRepo, _, _ := buildBookingSvc()
	client := clientRepo.seed("Dorra")

	amount := decimal.NewFromInt(500)
	created, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:      client.ID.String(),
		BookingType:   "ticket",
		Status:        model.BookingStatusConfirmed,
		TotalAmount:   decimal.NewFromInt(1000),
		PaymentAmount: &amount,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusAdvance, created.PaymentStatus)

	// Lowering the price to the paid amount flips the booking to paid.
	lowered := decimal.NewFromInt(500)
	resp, err := svc.Update(context.Background(), uuid.MustParse(created.ID), uuid.New(), dto.UpdateBookingRequest{TotalAmount: &lowered})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, resp.PaymentStatus)
}

func TestCancelBooking_AutoRefund(t *testing.T) {
	svc, _, clientRepo, paymentRepo, ledgerRepo := buildBookingSvc()
	client := clientRepo.seed("Aymen Rebai")

	amount := decimal.NewFromInt(600)
	created, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:      client.ID.String(),
		BookingType:   "trip",
		Status:        model.BookingStatusConfirmed,
		TotalAmount:   decimal.NewFromInt(600),
		PaymentAmount: &amount,
	})
	require.NoError(t, err)

	resp, err := svc.Cancel(context.Background(), uuid.MustParse(created.ID), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, resp.Status)
	assert.Equal(t, model.PaymentStatusPending, resp.PaymentStatus)

	require.Len(t, paymentRepo.payments, 2)
	refund := paymentRepo.payments[1]
	assert.Equal(t, model.TransactionRefund, refund.TransactionType)
	assert.Equal(t, model.MethodCash, refund.Method)
	assert.True(t, refund.Amount.Equal(amount))
	require.NotNil(t, refund.Reference)
	assert.Equal(t, "auto refund on cancellation", *refund.Reference)

	refunds := ledgerRepo.byType(model.EntryCustomerRefund)
	require.Len(t, refunds, 1)
	assert.True(t, refunds[0].Credit.Equal(amount))
}

func TestCancelBooking_NothingPaidNoRefund(t *testing.T) {
	svc, _, clientRepo, paymentRepo, _ := buildBookingSvc()
	client := clientRepo.seed("Ines")

	created, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:    client.ID.String(),
		BookingType: "ticket",
		TotalAmount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	resp, err := svc.Cancel(context.Background(), uuid.MustParse(created.ID), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, resp.Status)
	assert.Empty(t, paymentRepo.payments)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	svc, bookingRepo, clientRepo, _, _ := buildBookingSvc()
	client := clientRepo.seed("Moez")
	booking := seedBooking(bookingRepo, client, "BK-20260828-001", decimal.NewFromInt(100), decimal.Zero)
	booking.Status = model.BookingStatusCancelled

	_, err := svc.Cancel(context.Background(), booking.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrBookingCancelled)
}

func TestCreateBooking_UnknownTypeRejected(t *testing.T) {
	svc, _, clientRepo, _, _ := buildBookingSvc()
	client := clientRepo.seed("Bilel")

	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:    client.ID.String(),
		BookingType: "cruise",
		TotalAmount: decimal.NewFromInt(100),
	})
	assert.EqualError(t, err, `unknown booking type "cruise"`)
}

func TestCreateBooking_QuoteAliasMapsToDraft(t *testing.T) {
	svc, _, clientRepo, _, _ := buildBookingSvc()
	client := clientRepo.seed("Amani")

	resp, err := svc.Create(context.Background(), uuid.New(), dto.CreateBookingRequest{
		ClientID:    client.ID.String(),
		BookingType: "ticket",
		Status:      "quote",
		TotalAmount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusDraft, resp.Status)
}
