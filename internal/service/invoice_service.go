package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bedouifedy-oss/dima-voyage/internal/config"
	"github.com/bedouifedy-oss/dima-voyage/internal/infra"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"
	"github.com/bedouifedy-oss/dima-voyage/internal/worker"

	"github.com/google/uuid"
)

type InvoiceService interface {
	Generate(ctx context.Context, bookingID uuid.UUID) (string, error)
	Email(ctx context.Context, bookingID uuid.UUID) error
}

type invoiceService struct {
	bookingRepo repository.BookingRepository
	dispatcher  *worker.Dispatcher
	cfg         *config.Config
}

func NewInvoiceService(bookingRepo repository.BookingRepository, dispatcher *worker.Dispatcher, cfg *config.Config) InvoiceService {
	return &invoiceService{bookingRepo: bookingRepo, dispatcher: dispatcher, cfg: cfg}
}

// Generate renders the invoice PDF for a booking and returns the file path.
func (s *invoiceService) Generate(ctx context.Context, bookingID uuid.UUID) (string, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return "", ErrBookingNotFound
	}
	return infra.GenerateInvoicePDF(booking, s.cfg.AgencyName, s.cfg.PDFStoragePath)
}

// Email renders the invoice and queues it for delivery to the client's
// email address. The actual send happens on the worker pool.
func (s *invoiceService) Email(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return ErrBookingNotFound
	}
	if booking.Client == nil || booking.Client.Email == nil || *booking.Client.Email == "" {
		return errors.New("client has no email address on file")
	}

	path, err := infra.GenerateInvoicePDF(booking, s.cfg.AgencyName, s.cfg.PDFStoragePath)
	if err != nil {
		return err
	}

	payload := worker.EmailJobPayload{
		ToEmail: *booking.Client.Email,
		Subject: fmt.Sprintf("%s - Invoice %s", s.cfg.AgencyName, booking.Ref),
		Body:    fmt.Sprintf("Dear %s,\n\nPlease find attached the invoice for booking %s.\n\nBest regards,\n%s", booking.Client.Name, booking.Ref, s.cfg.AgencyName),
		PDFPath: path,
	}
	return s.dispatcher.EnqueueEmail(ctx, payload)
}
