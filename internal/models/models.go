package models

import "encoding/json"

// Gateway response codes used by the payment finalization flow
const (
	CodePaymentSuccess = "PAYMENT_SUCCESS"
	CodePaymentPending = "PAYMENT_PENDING"
)

// TransactionState is the gateway's view of a merchant transaction
type TransactionState string

const (
	TransactionPending TransactionState = "pending"
	TransactionSuccess TransactionState = "success"
	TransactionFailed  TransactionState = "failed"
)

// InitiatePaymentRequest - body of POST /api/payment/initiate
type InitiatePaymentRequest struct {
	Amount *float64 `json:"amount"`
}

// ErrorResponse - body returned when the relay or the gateway fails
type ErrorResponse struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// GatewayResponse is the common envelope of pay and status responses
type GatewayResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    GatewayData `json:"data"`
}

// GatewayData - the data block of a gateway response
type GatewayData struct {
	MerchantID            string              `json:"merchantId"`
	MerchantTransactionID string              `json:"merchantTransactionId"`
	TransactionID         string              `json:"transactionId,omitempty"`
	Amount                int64               `json:"amount,omitempty"`
	State                 string              `json:"state,omitempty"`
	ResponseCode          string              `json:"responseCode,omitempty"`
	InstrumentResponse    *InstrumentResponse `json:"instrumentResponse,omitempty"`
}

// InstrumentResponse - hosted payment page details returned by the pay call
type InstrumentResponse struct {
	Type         string `json:"type"`
	RedirectInfo struct {
		URL    string `json:"url"`
		Method string `json:"method"`
	} `json:"redirectInfo"`
}

// State classifies the response. Only success with PAYMENT_SUCCESS counts as paid.
func (r *GatewayResponse) State() TransactionState {
	switch {
	case r.Success && r.Code == CodePaymentSuccess:
		return TransactionSuccess
	case r.Code == CodePaymentPending:
		return TransactionPending
	default:
		return TransactionFailed
	}
}

// RedirectURL returns the hosted payment page URL, empty when absent
func (r *GatewayResponse) RedirectURL() string {
	if r.Data.InstrumentResponse == nil {
		return ""
	}
	return r.Data.InstrumentResponse.RedirectInfo.URL
}

// AmountMajor returns the paid amount in major currency units
func (d GatewayData) AmountMajor() float64 {
	return float64(d.Amount) / 100.0
}

// ListEventsResponseItem - элемент списка событий
type ListEventsResponseItem struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Date  string   `json:"date"`
	Time  string   `json:"time"`
	Price *float64 `json:"price,omitempty"`
}

// SeatMapResponse - body of GET /api/events/:id/seats
type SeatMapResponse struct {
	Event     Event      `json:"event"`
	Seats     []SeatView `json:"seats"`
	Booked    int        `json:"booked"`
	Available int        `json:"available"`
}

// ListBookingsResponseItem - one ticket in the profile listing
type ListBookingsResponseItem struct {
	ID             int64    `json:"id"`
	EventTitle     string   `json:"event_title"`
	EventDate      string   `json:"event_date"`
	EventTime      string   `json:"event_time"`
	SelectedSeats  []string `json:"selected_seats"`
	IsTicketActive bool     `json:"is_ticket_active"`
}
