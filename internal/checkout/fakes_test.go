package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"boxoffice/internal/models"
)

type fakeAPI struct {
	initiateResp *models.GatewayResponse
	initiateErr  error
	amounts      []float64

	statuses    []*models.GatewayResponse
	statusErr   error
	statusCalls int
}

func (a *fakeAPI) Initiate(_ context.Context, amount float64) (*models.GatewayResponse, error) {
	a.amounts = append(a.amounts, amount)
	return a.initiateResp, a.initiateErr
}

// Status returns the queued statuses in order, repeating the last one.
func (a *fakeAPI) Status(_ context.Context, _ string) (*models.GatewayResponse, error) {
	a.statusCalls++
	if a.statusErr != nil {
		return nil, a.statusErr
	}
	i := a.statusCalls - 1
	if i >= len(a.statuses) {
		i = len(a.statuses) - 1
	}
	resp := *a.statuses[i]
	return &resp, nil
}

type fakeBookings struct {
	created []*models.Booking
	err     error
}

func (b *fakeBookings) Create(_ context.Context, booking *models.Booking) error {
	if b.err != nil {
		return b.err
	}
	booking.ID = int64(len(b.created) + 1)
	booking.CreatedAt = time.Now()
	b.created = append(b.created, booking)
	return nil
}

type fakeDonations struct {
	created []*models.Donation
	err     error
}

func (d *fakeDonations) Create(_ context.Context, donation *models.Donation) error {
	if d.err != nil {
		return d.err
	}
	donation.ID = int64(len(d.created) + 1)
	d.created = append(d.created, donation)
	return nil
}

type fakeNotifier struct {
	sent []*models.Booking
	err  error
}

func (n *fakeNotifier) SendBookingConfirmation(_ context.Context, booking *models.Booking) error {
	n.sent = append(n.sent, booking)
	return n.err
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []any
	err      error
}

func (p *fakePublisher) Publish(subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, data)
	return p.err
}

type failingStorage struct {
	*MemoryStorage
}

func (failingStorage) SetItem(string, string) error {
	return errors.New("disk full")
}

// unreadableStorage fails reads and removals while keeping what was staged
type unreadableStorage struct {
	*MemoryStorage
}

func (unreadableStorage) GetItem(string) (string, bool, error) {
	return "", false, errors.New("input/output error")
}

func (unreadableStorage) RemoveItem(string) error {
	return errors.New("input/output error")
}

func successStatus(transactionID string, amount int64) *models.GatewayResponse {
	return &models.GatewayResponse{
		Success: true,
		Code:    models.CodePaymentSuccess,
		Message: "Your payment is successful.",
		Data: models.GatewayData{
			MerchantTransactionID: "MUID-1",
			TransactionID:         transactionID,
			Amount:                amount,
			State:                 "COMPLETED",
		},
	}
}

func pendingStatus() *models.GatewayResponse {
	return &models.GatewayResponse{
		Success: true,
		Code:    models.CodePaymentPending,
		Message: "Your payment is in pending state.",
	}
}

func failedStatus(message string) *models.GatewayResponse {
	return &models.GatewayResponse{
		Success: false,
		Code:    "PAYMENT_ERROR",
		Message: message,
	}
}

func initiatedResponse(id, url string) *models.GatewayResponse {
	return &models.GatewayResponse{
		Success: true,
		Code:    "PAYMENT_INITIATED",
		Data: models.GatewayData{
			MerchantTransactionID: id,
			InstrumentResponse: &models.InstrumentResponse{
				Type: "PAY_PAGE",
				RedirectInfo: struct {
					URL    string `json:"url"`
					Method string `json:"method"`
				}{URL: url, Method: "GET"},
			},
		},
	}
}
