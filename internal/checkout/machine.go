package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"boxoffice/internal/logger"
	"boxoffice/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownSeat     = errors.New("seat does not exist in this venue")
	ErrSeatBooked      = errors.New("seat is already booked")
	ErrNoSeatsSelected = errors.New("select at least one seat")
	ErrWrongStep       = errors.New("action is not allowed at this checkout step")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrNoRedirect      = errors.New("payment gateway did not return a redirect url")
)

var validate = validator.New()

// Step is the position of a purchase in the checkout flow
type Step int

const (
	StepSelectingSeats Step = iota
	StepEnteringDetails
	StepSubmitting
	StepRedirected
)

func (s Step) String() string {
	switch s {
	case StepSelectingSeats:
		return "selecting_seats"
	case StepEnteringDetails:
		return "entering_details"
	case StepSubmitting:
		return "submitting"
	case StepRedirected:
		return "redirected"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Customer holds the contact details required before payment
type Customer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// Donor holds the contact details of a donation
type Donor struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// Redirect is where the customer continues after a successful submission
type Redirect struct {
	MerchantTransactionID string
	URL                   string
	Amount                float64
}

// Machine steps one ticket purchase from seat selection to the payment redirect.
// It is not safe for concurrent use.
type Machine struct {
	api     PaymentAPI
	storage LocalStorage

	event        models.Event
	pricePerSeat float64
	seats        []models.SeatView
	index        map[string]int
	picked       []string

	step     Step
	customer Customer
}

func NewMachine(event models.Event, seats []models.SeatView, pricePerSeat float64, api PaymentAPI, storage LocalStorage) *Machine {
	views := make([]models.SeatView, len(seats))
	copy(views, seats)

	index := make(map[string]int, len(views))
	for i, v := range views {
		index[v.ID] = i
		if v.Status == models.SeatSelected {
			views[i].Status = models.SeatAvailable
		}
	}

	return &Machine{
		api:          api,
		storage:      storage,
		event:        event,
		pricePerSeat: pricePerSeat,
		seats:        views,
		index:        index,
		step:         StepSelectingSeats,
	}
}

func (m *Machine) Step() Step {
	return m.step
}

// Seats returns the current seat views in layout order
func (m *Machine) Seats() []models.SeatView {
	views := make([]models.SeatView, len(m.seats))
	copy(views, m.seats)
	return views
}

// Selected returns the selected seat ids in the order they were picked
func (m *Machine) Selected() []string {
	if len(m.picked) == 0 {
		return nil
	}
	ids := make([]string, len(m.picked))
	copy(ids, m.picked)
	return ids
}

func (m *Machine) Total() float64 {
	return float64(len(m.picked)) * m.pricePerSeat
}

// Toggle flips a seat between available and selected. Booked seats are inert.
func (m *Machine) Toggle(seatID string) error {
	if m.step != StepSelectingSeats {
		return ErrWrongStep
	}

	i, ok := m.index[seatID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSeat, seatID)
	}

	switch m.seats[i].Status {
	case models.SeatBooked:
		return fmt.Errorf("%w: %s", ErrSeatBooked, seatID)
	case models.SeatSelected:
		m.seats[i].Status = models.SeatAvailable
		m.picked = slices.DeleteFunc(m.picked, func(id string) bool { return id == seatID })
	default:
		m.seats[i].Status = models.SeatSelected
		m.picked = append(m.picked, seatID)
	}
	return nil
}

// Advance moves from seat selection to customer details
func (m *Machine) Advance() error {
	if m.step != StepSelectingSeats {
		return ErrWrongStep
	}
	if len(m.picked) == 0 {
		return ErrNoSeatsSelected
	}
	m.step = StepEnteringDetails
	return nil
}

// Back returns to seat selection. Once submitted there is no way back.
func (m *Machine) Back() error {
	switch m.step {
	case StepSelectingSeats, StepEnteringDetails:
		m.step = StepSelectingSeats
		return nil
	default:
		return ErrWrongStep
	}
}

func (m *Machine) SetCustomer(customer Customer) error {
	if m.step != StepEnteringDetails {
		return ErrWrongStep
	}
	if err := validate.Struct(customer); err != nil {
		return fmt.Errorf("invalid customer details: %w", err)
	}
	m.customer = customer
	return nil
}

// Submit initiates the payment, stages the booking intent under the returned
// merchant transaction id and returns the hosted payment page. On failure the
// machine goes back to customer details.
func (m *Machine) Submit(ctx context.Context) (*Redirect, error) {
	if m.step != StepEnteringDetails {
		return nil, ErrWrongStep
	}
	if err := validate.Struct(m.customer); err != nil {
		return nil, fmt.Errorf("invalid customer details: %w", err)
	}

	seats := m.Selected()
	amount := m.Total()
	m.step = StepSubmitting

	redirect, err := initiate(ctx, m.api, amount)
	if err != nil {
		m.step = StepEnteringDetails
		return nil, err
	}

	intent := PendingBooking{
		EventTitle:    m.event.Title,
		EventDate:     m.event.Date,
		EventTime:     m.event.Time,
		SelectedSeats: seats,
		SeatCount:     len(seats),
		CustomerName:  m.customer.Name,
		CustomerEmail: m.customer.Email,
		CustomerPhone: m.customer.Phone,
		TotalAmount:   amount,
	}
	if err := stage(m.storage, BookingKey(redirect.MerchantTransactionID), intent); err != nil {
		m.step = StepEnteringDetails
		return nil, err
	}

	logger.WithContext(logger.ContextWithTransactionID(ctx, redirect.MerchantTransactionID)).Info("Booking staged, redirecting to payment page",
		"event_title", m.event.Title,
		"seat_count", len(seats),
		"amount", amount,
	)

	m.step = StepRedirected
	return redirect, nil
}

// StartDonation initiates a donation payment and stages its intent
func StartDonation(ctx context.Context, api PaymentAPI, storage LocalStorage, amount float64, donor Donor) (*Redirect, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}
	if err := validate.Struct(donor); err != nil {
		return nil, fmt.Errorf("invalid donor details: %w", err)
	}

	redirect, err := initiate(ctx, api, amount)
	if err != nil {
		return nil, err
	}

	intent := PendingDonation{
		DonorName:  donor.Name,
		DonorEmail: donor.Email,
		DonorPhone: donor.Phone,
		Amount:     amount,
	}
	if err := stage(storage, DonationKey(redirect.MerchantTransactionID), intent); err != nil {
		return nil, err
	}

	logger.WithContext(logger.ContextWithTransactionID(ctx, redirect.MerchantTransactionID)).Info("Donation staged, redirecting to payment page",
		"amount", amount,
	)
	return redirect, nil
}

func initiate(ctx context.Context, api PaymentAPI, amount float64) (*Redirect, error) {
	resp, err := api.Initiate(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = resp.Code
		}
		return nil, fmt.Errorf("payment gateway rejected the request: %s", msg)
	}

	id := resp.Data.MerchantTransactionID
	url := resp.RedirectURL()
	if id == "" || url == "" {
		return nil, ErrNoRedirect
	}

	return &Redirect{MerchantTransactionID: id, URL: url, Amount: amount}, nil
}
