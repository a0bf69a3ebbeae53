package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"boxoffice/internal/config"
	"boxoffice/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	calls []models.Booking
	err   error
}

func (n *recordingNotifier) SendBookingConfirmation(_ context.Context, booking *models.Booking) error {
	n.calls = append(n.calls, *booking)
	return n.err
}

func notificationFailed(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(models.NotificationFailedEvent{
		Booking: models.Booking{
			ID:             7,
			EventTitle:     "Jazz Night",
			SelectedSeats:  []string{"A1"},
			CustomerEmail:  "asha@example.com",
			IsTicketActive: true,
		},
		Error:     "notification failed with status 500: boom",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	return data
}

func TestProcessNotificationSuccess(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewHandlers(notifier, 5)

	done := h.processNotification(context.Background(), notificationFailed(t), 0)

	assert.True(t, done)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, int64(7), notifier.calls[0].ID)
	assert.Equal(t, []string{"A1"}, notifier.calls[0].SelectedSeats)
}

func TestProcessNotificationRetriesUntilBudgetSpent(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("still down")}
	h := NewHandlers(notifier, 3)
	data := notificationFailed(t)

	assert.False(t, h.processNotification(context.Background(), data, 0))
	assert.False(t, h.processNotification(context.Background(), data, 1))
	assert.True(t, h.processNotification(context.Background(), data, 2))
	assert.Len(t, notifier.calls, 3)
}

func TestProcessNotificationDropsInvalidPayload(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewHandlers(notifier, 5)

	assert.True(t, h.processNotification(context.Background(), []byte("{garbage"), 0))
	assert.Empty(t, notifier.calls)
}

func TestNewHandlersClampsBudget(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("down")}
	h := NewHandlers(notifier, 0)

	assert.True(t, h.processNotification(context.Background(), notificationFailed(t), 0))
}

func TestDecode(t *testing.T) {
	var event models.DonationRecordedEvent
	assert.True(t, decode(models.EventDonationRecorded, []byte(`{"donation_id":3,"amount":250}`), &event))
	assert.Equal(t, int64(3), event.DonationID)
	assert.Equal(t, 250.0, event.Amount)

	assert.False(t, decode(models.EventDonationRecorded, []byte(`nope`), &event))
}

func TestRecordStatusCheck(t *testing.T) {
	h := NewHandlers(&recordingNotifier{}, 5)

	data, err := json.Marshal(models.PaymentStatusCheckedEvent{
		MerchantTransactionID: "MUID-1",
		Code:                  models.CodePaymentPending,
		State:                 models.TransactionPending,
		Timestamp:             time.Now(),
	})
	require.NoError(t, err)

	assert.True(t, h.recordStatusCheck(data))
	assert.True(t, h.recordStatusCheck([]byte(`{"merchant_transaction_id":"MUID-2"}`)))
	assert.False(t, h.recordStatusCheck([]byte(`not json`)))
}

func TestConsumerServiceRequiresNATS(t *testing.T) {
	_, err := NewConsumerService(&config.Config{})
	assert.Error(t, err)
}

func TestRoutesCoverEveryWorkflowEvent(t *testing.T) {
	cs := &ConsumerService{handlers: NewHandlers(&recordingNotifier{}, 5)}
	routes := cs.routes()

	for _, subject := range []string{
		models.EventPaymentInitiated,
		models.EventPaymentStatusChecked,
		models.EventPaymentFailed,
		models.EventBookingConfirmed,
		models.EventBookingPersistFailed,
		models.EventDonationRecorded,
		models.EventNotificationFailed,
	} {
		assert.Contains(t, routes, subject)
	}
}
