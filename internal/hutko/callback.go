package hutko

import "strconv"

// Validator checks inbound asynchronous callbacks against the configured
// merchant identity and signature.
type Validator struct {
	creds Credentials
}

// NewValidator creates a callback validator for the given merchant.
func NewValidator(creds Credentials) *Validator {
	return &Validator{creds: creds}
}

// Validate verifies an inbound callback body. It returns nil only when the
// merchant id matches the configured one and the signature recomputed over
// the body (minus signature and response_signature_string) with the merchant
// secret equals the submitted signature.
//
// The recomputation uses the same filtering and sorting rules as outbound
// signing; correctness depends on byte-for-byte parity between the two paths.
func (v *Validator) Validate(body Fields) error {
	if len(body) == 0 {
		return ErrEmptyCallback
	}

	received := body.Str("merchant_id")
	merchantID, err := strconv.Atoi(received)
	if err != nil || merchantID != v.creds.MerchantID {
		return &MerchantMismatchError{Expected: v.creds.MerchantID, Received: received}
	}

	submitted := body.Str("signature")

	fields := body.Clone()
	delete(fields, "signature")
	delete(fields, "response_signature_string")

	if submitted != Sign(fields, v.creds.SecretKey) {
		return ErrInvalidSignature
	}
	return nil
}
