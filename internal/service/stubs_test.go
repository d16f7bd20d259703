package service_test

// In-memory repository stubs. The services run their transactions with a
// nil *gorm.DB, which runTx treats as a direct call, so these stubs can
// ignore the tx argument entirely.

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ── Clients ───────────────────────────────────────────────────────────────────

type stubClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

func (r *stubClientRepo) seed(name string) *model.Client {
	c := &model.Client{ID: uuid.New(), Name: name}
	r.clients[c.ID] = c
	return c
}

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *stubClientRepo) List(_ context.Context, _ string) ([]model.Client, error) {
	var out []model.Client
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.clients, id)
	return nil
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)

// ── Bookings ──────────────────────────────────────────────────────────────────

type stubBookingRepo struct {
	bookings map[uuid.UUID]*model.Booking
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{bookings: make(map[uuid.UUID]*model.Booking)}
}

func (r *stubBookingRepo) Create(_ context.Context, _ *gorm.DB, b *model.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	r.bookings[b.ID] = b
	return nil
}

func (r *stubBookingRepo) Save(_ context.Context, _ *gorm.DB, b *model.Booking) error {
	r.bookings[b.ID] = b
	return nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func (r *stubBookingRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Booking, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubBookingRepo) FindByRef(_ context.Context, ref string) (*model.Booking, error) {
	for _, b := range r.bookings {
		if b.Ref == ref {
			return b, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubBookingRepo) CountByRefPrefix(_ context.Context, _ *gorm.DB, prefix string) (int64, error) {
	var count int64
	for _, b := range r.bookings {
		if strings.HasPrefix(b.Ref, prefix) {
			count++
		}
	}
	return count, nil
}

func (r *stubBookingRepo) ExistsRef(_ context.Context, _ *gorm.DB, ref string) (bool, error) {
	for _, b := range r.bookings {
		if b.Ref == ref {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubBookingRepo) UpdateFieldsTx(_ *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	b, ok := r.bookings[id]
	if !ok {
		return errors.New("not found")
	}
	for k, v := range fields {
		switch k {
		case "status":
			b.Status = v.(string)
		case "payment_status":
			b.PaymentStatus = v.(string)
		case "supplier_payment_status":
			b.SupplierPaymentStatus = v.(string)
		case "is_ledger_posted":
			b.IsLedgerPosted = v.(bool)
		case "visa_form_config":
			b.VisaFormConfig = v.(datatypes.JSON)
		}
	}
	return nil
}

func (r *stubBookingRepo) List(_ context.Context, _ dto.BookingFilter) ([]model.Booking, int64, error) {
	var out []model.Booking
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *stubBookingRepo) ListNotSupplierPaid(_ context.Context) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range r.bookings {
		if b.SupplierPaymentStatus != model.SupplierPaid && b.SupplierCost.IsPositive() {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubBookingRepo) DB() *gorm.DB { return nil }

var _ repository.BookingRepository = (*stubBookingRepo)(nil)

// ── Payments ──────────────────────────────────────────────────────────────────

type stubPaymentRepo struct {
	payments []*model.Payment
}

func (r *stubPaymentRepo) CreateTx(_ *gorm.DB, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments = append(r.payments, p)
	return nil
}

func (r *stubPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	for _, p := range r.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubPaymentRepo) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range r.payments {
		if p.BookingID != nil && *p.BookingID == bookingID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPaymentRepo) List(_ context.Context, _ dto.PaymentFilter) ([]model.Payment, int64, error) {
	var out []model.Payment
	for _, p := range r.payments {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPaymentRepo) NetPaidTx(_ *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error) {
	net := decimal.Zero
	for _, p := range r.payments {
		if p.BookingID == nil || *p.BookingID != bookingID {
			continue
		}
		if p.TransactionType == model.TransactionPayment {
			net = net.Add(p.Amount)
		} else {
			net = net.Sub(p.Amount)
		}
	}
	return net, nil
}

func (r *stubPaymentRepo) DB() *gorm.DB { return nil }

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

// ── Ledger ────────────────────────────────────────────────────────────────────

type stubLedgerRepo struct {
	entries     []*model.LedgerEntry
	allocations []model.BookingLedgerAllocation
}

func (r *stubLedgerRepo) CreateTx(_ *gorm.DB, e *model.LedgerEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *stubLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubLedgerRepo) FindEligibleForUpdateTx(_ *gorm.DB, ids []uuid.UUID) ([]model.LedgerEntry, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.LedgerEntry
	for _, e := range r.entries {
		if want[e.ID] && !e.IsConsolidated {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *stubLedgerRepo) MarkConsolidatedTx(_ *gorm.DB, ids []uuid.UUID) error {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, e := range r.entries {
		if want[e.ID] {
			e.IsConsolidated = true
		}
	}
	return nil
}

func (r *stubLedgerRepo) List(_ context.Context, _ dto.LedgerFilter) ([]model.LedgerEntry, int64, error) {
	var out []model.LedgerEntry
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubLedgerRepo) ListUnconsolidated(_ context.Context, until *time.Time) ([]model.LedgerEntry, error) {
	var out []model.LedgerEntry
	for _, e := range r.entries {
		if e.IsConsolidated {
			continue
		}
		if until != nil && e.Date.After(*until) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubLedgerRepo) SumDebit(_ context.Context, entryTypes []string, from, to *time.Time) (decimal.Decimal, error) {
	return r.sum(entryTypes, from, to, true), nil
}

func (r *stubLedgerRepo) SumCredit(_ context.Context, entryTypes []string, from, to *time.Time) (decimal.Decimal, error) {
	return r.sum(entryTypes, from, to, false), nil
}

func (r *stubLedgerRepo) sum(entryTypes []string, from, to *time.Time, debit bool) decimal.Decimal {
	want := make(map[string]bool, len(entryTypes))
	for _, t := range entryTypes {
		want[t] = true
	}
	total := decimal.Zero
	for _, e := range r.entries {
		if !want[e.EntryType] {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		if debit {
			total = total.Add(e.Debit)
		} else {
			total = total.Add(e.Credit)
		}
	}
	return total
}

func (r *stubLedgerRepo) ExistsAccountEntryTx(_ *gorm.DB, account, entryType string) (bool, error) {
	for _, e := range r.entries {
		if e.Account == account && e.EntryType == entryType {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubLedgerRepo) CreateAllocationTx(_ *gorm.DB, a *model.BookingLedgerAllocation) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.allocations = append(r.allocations, *a)
	return nil
}

func (r *stubLedgerRepo) SumAllocationsForBookingTx(_ *gorm.DB, bookingID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, a := range r.allocations {
		if a.BookingID == bookingID {
			total = total.Add(a.Amount)
		}
	}
	return total, nil
}

func (r *stubLedgerRepo) byType(entryType string) []*model.LedgerEntry {
	var out []*model.LedgerEntry
	for _, e := range r.entries {
		if e.EntryType == entryType {
			out = append(out, e)
		}
	}
	return out
}

func (r *stubLedgerRepo) DB() *gorm.DB { return nil }

var _ repository.LedgerRepository = (*stubLedgerRepo)(nil)

// ── Expenses ──────────────────────────────────────────────────────────────────

type stubExpenseRepo struct {
	expenses map[uuid.UUID]*model.Expense
}

func newStubExpenseRepo() *stubExpenseRepo {
	return &stubExpenseRepo{expenses: make(map[uuid.UUID]*model.Expense)}
}

func (r *stubExpenseRepo) seed(name string, amount decimal.Decimal, paid bool) *model.Expense {
	e := &model.Expense{ID: uuid.New(), Name: name, Amount: amount, DueDate: time.Now(), Paid: paid}
	r.expenses[e.ID] = e
	return e
}

func (r *stubExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.expenses[e.ID] = e
	return nil
}

func (r *stubExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return e, nil
}

func (r *stubExpenseRepo) FindByIDsTx(_ *gorm.DB, ids []uuid.UUID) ([]model.Expense, error) {
	var out []model.Expense
	for _, id := range ids {
		if e, ok := r.expenses[id]; ok {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *stubExpenseRepo) List(_ context.Context, onlyUnpaid bool) ([]model.Expense, error) {
	var out []model.Expense
	for _, e := range r.expenses {
		if onlyUnpaid && e.Paid {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubExpenseRepo) Update(_ context.Context, e *model.Expense) error {
	r.expenses[e.ID] = e
	return nil
}

func (r *stubExpenseRepo) UpdateTx(_ *gorm.DB, e *model.Expense) error {
	stored := *e
	r.expenses[e.ID] = &stored
	return nil
}

func (r *stubExpenseRepo) SumUnpaid(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.expenses {
		if !e.Paid {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (r *stubExpenseRepo) DB() *gorm.DB { return nil }

var _ repository.ExpenseRepository = (*stubExpenseRepo)(nil)
