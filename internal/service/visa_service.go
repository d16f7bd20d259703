package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bedouifedy-oss/dima-voyage/internal/config"
	"github.com/bedouifedy-oss/dima-voyage/internal/dto"
	"github.com/bedouifedy-oss/dima-voyage/internal/model"
	"github.com/bedouifedy-oss/dima-voyage/internal/repository"
	"github.com/bedouifedy-oss/dima-voyage/internal/worker"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// visaFieldKeys is the closed set of optional fields the per-booking
// form config may enable. Passport number and photo are always on.
var visaFieldKeys = map[string]bool{
	"full_name": true, "dob": true, "nationality": true,
	"passport_issue_date": true, "passport_expiry_date": true,
	"phone": true, "email": true, "address": true,
	"travel_reason": true, "departure_date": true, "return_date": true,
	"itinerary": true, "accommodation": true, "emergency_contact": true,
}

type VisaService interface {
	ConfigureForm(ctx context.Context, bookingID uuid.UUID, req dto.VisaFormConfigRequest) error
	SendLink(ctx context.Context, bookingID uuid.UUID, req dto.SendVisaLinkRequest) error
	GetForm(ctx context.Context, ref string) (*dto.VisaFormView, error)
	Submit(ctx context.Context, ref string, req dto.VisaSubmitRequest, photoPath string) (*dto.VisaSubmitResponse, error)
	ListNotifications(ctx context.Context, bookingID uuid.UUID) ([]dto.NotificationLine, error)
}

type visaService struct {
	bookingRepo      repository.BookingRepository
	visaRepo         repository.VisaRepository
	notificationRepo repository.NotificationRepository
	dispatcher       *worker.Dispatcher
	cfg              *config.Config
}

func NewVisaService(
	bookingRepo repository.BookingRepository,
	visaRepo repository.VisaRepository,
	notificationRepo repository.NotificationRepository,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) VisaService {
	return &visaService{
		bookingRepo:      bookingRepo,
		visaRepo:         visaRepo,
		notificationRepo: notificationRepo,
		dispatcher:       dispatcher,
		cfg:              cfg,
	}
}

// ConfigureForm stores the enabled optional field keys on the booking.
func (s *visaService) ConfigureForm(ctx context.Context, bookingID uuid.UUID, req dto.VisaFormConfigRequest) error {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return ErrBookingNotFound
	}
	if booking.Status == model.BookingStatusCancelled {
		return ErrBookingCancelled
	}

	for _, f := range req.Fields {
		if !visaFieldKeys[f] {
			return fmt.Errorf("unknown visa form field %q", f)
		}
	}

	raw, err := json.Marshal(req.Fields)
	if err != nil {
		return err
	}
	return s.bookingRepo.UpdateFieldsTx(s.bookingRepo.DB(), bookingID, map[string]interface{}{
		"visa_form_config": datatypes.JSON(raw),
	})
}

// visa link message templates per language.
const (
	visaMsgTN = "Aslema %s! Bech tkammel dossier visa mte3ek (%s), 3abbi el formulaire houni: %s. Merci, %s"
	visaMsgFR = "Bonjour %s, pour completer votre dossier visa (%s), veuillez remplir le formulaire: %s. Merci, %s"
)

// SendLink persists a Notification for the public form link and hands
// it to the worker pool. The send itself is best effort and never
// blocks the request.
func (s *visaService) SendLink(ctx context.Context, bookingID uuid.UUID, req dto.SendVisaLinkRequest) error {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return ErrBookingNotFound
	}

	lang := req.Language
	if lang == "" {
		lang = model.LanguageTN
	}

	clientName := ""
	if booking.Client != nil {
		clientName = booking.Client.Name
	}
	link := fmt.Sprintf("%s/v1/visa/%s", s.cfg.PublicBaseURL, booking.Ref)

	tmpl := visaMsgTN
	if lang == model.LanguageFR {
		tmpl = visaMsgFR
	}
	body := fmt.Sprintf(tmpl, clientName, booking.Ref, link, s.cfg.AgencyName)

	notification := model.Notification{
		BookingID: &booking.ID,
		Phone:     req.Phone,
		Body:      body,
		Language:  lang,
		Status:    model.NotificationStatusPending,
	}
	if err := s.notificationRepo.Create(ctx, &notification); err != nil {
		return err
	}

	if s.dispatcher != nil {
		payload := worker.NotificationJobPayload{NotificationID: notification.ID.String()}
		if err := s.dispatcher.EnqueueNotification(ctx, payload); err != nil {
			// The retry cron will pick the row up; report nothing fatal.
			return nil
		}
	}
	return nil
}

func (s *visaService) GetForm(ctx context.Context, ref string) (*dto.VisaFormView, error) {
	booking, err := s.bookingRepo.FindByRef(ctx, ref)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	view := &dto.VisaFormView{
		BookingRef:  booking.Ref,
		BookingType: booking.BookingType,
		Fields:      decodeFormFields(booking.VisaFormConfig),
	}
	if booking.Client != nil {
		view.ClientName = booking.Client.Name
	}
	if _, err := s.visaRepo.FindByBookingID(ctx, booking.ID); err == nil {
		view.Submitted = true
	}
	return view, nil
}

// Submit writes the client-filled dossier. Two near-simultaneous
// submissions race on the one-to-one index; the repository falls back to
// the update path, and Updated reports which way it went.
func (s *visaService) Submit(ctx context.Context, ref string, req dto.VisaSubmitRequest, photoPath string) (*dto.VisaSubmitResponse, error) {
	booking, err := s.bookingRepo.FindByRef(ctx, ref)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if photoPath == "" {
		return nil, errors.New("passport photo is required")
	}
	if !req.ConsentAccurate || !req.ConsentData {
		return nil, errors.New("both consent checkboxes are required")
	}

	app := model.VisaApplication{
		BookingID:         booking.ID,
		PassportNumber:    req.PassportNumber,
		PhotoPath:         photoPath,
		FullName:          req.FullName,
		Nationality:       req.Nationality,
		Phone:             req.Phone,
		Email:             req.Email,
		Address:           req.Address,
		TravelReason:      req.TravelReason,
		Itinerary:         req.Itinerary,
		AccommodationType: req.AccommodationType,
		HostName:          req.HostName,
		HostAddress:       req.HostAddress,
		HotelName:         req.HotelName,
		HotelAddress:      req.HotelAddress,
		EmergencyContact:  req.EmergencyContact,
		ConsentAccurate:   req.ConsentAccurate,
		ConsentData:       req.ConsentData,
		SubmittedAt:       time.Now(),
	}
	var parseErr error
	app.DOB = parseDatePtr(req.DOB, &parseErr)
	app.PassportIssueDate = parseDatePtr(req.PassportIssueDate, &parseErr)
	app.PassportExpiryDate = parseDatePtr(req.PassportExpiryDate, &parseErr)
	app.DepartureDate = parseDatePtr(req.DepartureDate, &parseErr)
	app.ReturnDate = parseDatePtr(req.ReturnDate, &parseErr)
	if parseErr != nil {
		return nil, parseErr
	}

	existedBefore := false
	if _, err := s.visaRepo.FindByBookingID(ctx, booking.ID); err == nil {
		existedBefore = true
	}

	if err := s.visaRepo.Upsert(ctx, &app); err != nil {
		return nil, err
	}

	return &dto.VisaSubmitResponse{
		BookingRef:  booking.Ref,
		SubmittedAt: app.SubmittedAt.Format(time.RFC3339),
		Updated:     existedBefore,
	}, nil
}

// ListNotifications returns the WhatsApp message history of one booking
// so the back office can see whether the link ever went out.
func (s *visaService) ListNotifications(ctx context.Context, bookingID uuid.UUID) ([]dto.NotificationLine, error) {
	if _, err := s.bookingRepo.FindByID(ctx, bookingID); err != nil {
		return nil, ErrBookingNotFound
	}
	notifications, err := s.notificationRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationLine, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		line := dto.NotificationLine{
			ID:         n.ID.String(),
			Phone:      n.Phone,
			Language:   n.Language,
			Status:     n.Status,
			RetryCount: n.RetryCount,
			LastError:  n.LastError,
			CreatedAt:  n.CreatedAt.Format(time.RFC3339),
		}
		if n.SentAt != nil {
			sent := n.SentAt.Format(time.RFC3339)
			line.SentAt = &sent
		}
		out = append(out, line)
	}
	return out, nil
}

func decodeFormFields(raw datatypes.JSON) []string {
	var fields []string
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &fields)
	}
	return fields
}

func parseDatePtr(s *string, errOut *error) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		*errOut = fmt.Errorf("invalid date %q", *s)
		return nil
	}
	return &t
}
