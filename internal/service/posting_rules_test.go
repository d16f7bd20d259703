package service

import (
	"testing"

	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDerivePaymentStatus(t *testing.T) {
	d := decimal.NewFromInt
	cases := []struct {
		name    string
		netPaid int64
		total   int64
		want    string
	}{
		{"nothing paid", 0, 1000, model.PaymentStatusPending},
		{"partial", 400, 1000, model.PaymentStatusAdvance},
		{"exact", 1000, 1000, model.PaymentStatusPaid},
		{"overpaid", 1200, 1000, model.PaymentStatusPaid},
		{"net refund", -200, 1000, model.PaymentStatusRefunded},
		{"zero after full refund", 0, 1000, model.PaymentStatusPending},
		{"zero total booking", 0, 0, model.PaymentStatusPending},
		{"payment on zero total", 100, 0, model.PaymentStatusAdvance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, derivePaymentStatus(d(tc.netPaid), d(tc.total)))
		})
	}
}

func TestDeriveSupplierStatus(t *testing.T) {
	d := decimal.NewFromInt
	cases := []struct {
		name      string
		allocated int64
		cost      int64
		want      string
	}{
		{"nothing allocated", 0, 500, model.SupplierUnpaid},
		{"partially allocated", 200, 500, model.SupplierPartial},
		{"fully allocated", 500, 500, model.SupplierPaid},
		{"over-allocated", 600, 500, model.SupplierPaid},
		{"zero cost", 0, 0, model.SupplierUnpaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deriveSupplierStatus(d(tc.allocated), d(tc.cost)))
		})
	}
}

func TestBookingAccountLabels(t *testing.T) {
	withName := &model.Booking{Ref: "BK-20260825-001", Client: &model.Client{Name: "Amira"}}
	assert.Equal(t, "Amira (BK-20260825-001)", bookingAccount(withName))

	noClient := &model.Booking{Ref: "BK-20260825-002"}
	assert.Equal(t, "Booking BK-20260825-002", bookingAccount(noClient))

	assert.Equal(t, "Supplier cost BK-20260825-001", supplierCostAccount(withName))
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, model.BookingStatusDraft, normalizeStatus("quote"))
	assert.Equal(t, model.BookingStatusConfirmed, normalizeStatus("confirmed"))
}
