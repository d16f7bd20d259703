package dto

// ─── Admin configuration ─────────────────────────────────────────────────────

// VisaFormConfigRequest sets which optional fields the public intake form
// shows for one booking. Passport number and photo are always required
// and cannot be disabled.
type VisaFormConfigRequest struct {
	Fields []string `json:"fields" validate:"required,min=1"`
}

type SendVisaLinkRequest struct {
	Phone string `json:"phone" validate:"required"`
	// Language: "tn" | "fr"
	Language string `json:"language" validate:"omitempty,oneof=tn fr"`
}

// ─── Public intake ───────────────────────────────────────────────────────────

// VisaSubmitRequest is the public multipart form payload. Only the
// passport number and photo are mandatory; the rest follows the
// per-booking form config.
type VisaSubmitRequest struct {
	PassportNumber string  `form:"passport_number" validate:"required"`
	FullName       *string `form:"full_name"`

	DOB                *string `form:"dob"                  validate:"omitempty,datetime=2006-01-02"`
	Nationality        *string `form:"nationality"`
	PassportIssueDate  *string `form:"passport_issue_date"  validate:"omitempty,datetime=2006-01-02"`
	PassportExpiryDate *string `form:"passport_expiry_date" validate:"omitempty,datetime=2006-01-02"`

	Phone   *string `form:"phone"`
	Email   *string `form:"email" validate:"omitempty,email"`
	Address *string `form:"address"`

	TravelReason  *string `form:"travel_reason"`
	DepartureDate *string `form:"departure_date" validate:"omitempty,datetime=2006-01-02"`
	ReturnDate    *string `form:"return_date"    validate:"omitempty,datetime=2006-01-02"`
	Itinerary     *string `form:"itinerary"`

	AccommodationType *string `form:"accommodation_type" validate:"omitempty,oneof=hotel host"`
	HostName          *string `form:"host_name"`
	HostAddress       *string `form:"host_address"`
	HotelName         *string `form:"hotel_name"`
	HotelAddress      *string `form:"hotel_address"`

	EmergencyContact *string `form:"emergency_contact"`

	ConsentAccurate bool `form:"consent_accurate" validate:"required"`
	ConsentData     bool `form:"consent_data"     validate:"required"`
}

type VisaFormView struct {
	BookingRef  string   `json:"booking_ref"`
	ClientName  string   `json:"client_name"`
	BookingType string   `json:"booking_type"`
	Fields      []string `json:"fields"`
	Submitted   bool     `json:"submitted"`
}

type VisaSubmitResponse struct {
	BookingRef  string `json:"booking_ref"`
	SubmittedAt string `json:"submitted_at"`
	Updated     bool   `json:"updated"`
}

// NotificationLine is one outbound WhatsApp message in a booking's
// send history. The body is omitted; it is derivable from the template.
type NotificationLine struct {
	ID         string  `json:"id"`
	Phone      string  `json:"phone"`
	Language   string  `json:"language"`
	Status     string  `json:"status"`
	RetryCount int     `json:"retry_count"`
	LastError  *string `json:"last_error,omitempty"`
	SentAt     *string `json:"sent_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}
