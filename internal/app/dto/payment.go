package dto

type CreateIntentRequest struct {
	Amount    *float64 `json:"amount" validate:"required,gt=0"`
	BookingID string   `json:"bookingId" validate:"required"`
}

type CreateIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type ConfirmPaymentRequest struct {
	BookingID       string `json:"bookingId" validate:"required"`
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

type ConfirmPaymentResult struct {
	Booking Booking `json:"booking"`
}
