package service

import "errors"

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrAddressRequired       = errors.New("shipping address is required")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidShippingMethod = errors.New("invalid shipping method")
	ErrPickupDateOutOfRange  = errors.New("pickup date must be between tomorrow and 7 days from today")
	ErrPickupRequired        = errors.New("pickup date and time are required")
	ErrPickupTimeOutOfRange  = errors.New("pickup time must be between 09:00 and 21:00")
	ErrEmptyVoiceReply       = errors.New("no response text received")
	ErrVoiceSessionEnded     = errors.New("voice session already completed")
	ErrMissingImage          = errors.New("an image of the product is required")
	ErrInvalidCredentials    = errors.New("email and password are required")
)

var validationErrors = []error{
	ErrEmptyCart,
	ErrAddressRequired,
	ErrInvalidPaymentMethod,
	ErrInvalidShippingMethod,
	ErrPickupDateOutOfRange,
	ErrPickupRequired,
	ErrPickupTimeOutOfRange,
	ErrVoiceSessionEnded,
	ErrMissingImage,
	ErrInvalidCredentials,
}

// IsValidation reports whether err was rejected locally before any backend
// call was made.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
