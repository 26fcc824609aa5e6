package hutko_test

import (
	"testing"

	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCallbackBody(t *testing.T, secret string) hutko.Fields {
	t.Helper()
	body := hutko.Fields{
		"merchant_id":     "1700002",
		"order_id":        "42",
		"response_status": "success",
	}
	body["signature"] = hutko.Sign(body, secret)
	return body
}

func TestValidate_Valid(t *testing.T) {
	v := hutko.NewValidator(hutko.TestCredentials())
	assert.NoError(t, v.Validate(validCallbackBody(t, hutko.TestSecretKey)))
}

func TestValidate_KnownSignature(t *testing.T) {
	// signed string "test|1700002|42|success"
	v := hutko.NewValidator(hutko.TestCredentials())
	body := hutko.Fields{
		"merchant_id":     "1700002",
		"order_id":        "42",
		"response_status": "success",
		"signature":       "a02f62c9fa3b6a72455f2042fde975603aeb1998",
	}
	assert.NoError(t, v.Validate(body))
}

func TestValidate_EmptyBody(t *testing.T) {
	v := hutko.NewValidator(hutko.TestCredentials())
	assert.ErrorIs(t, v.Validate(nil), hutko.ErrEmptyCallback)
	assert.ErrorIs(t, v.Validate(hutko.Fields{}), hutko.ErrEmptyCallback)
}

func TestValidate_MerchantMismatch(t *testing.T) {
	v := hutko.NewValidator(hutko.Credentials{MerchantID: 555, SecretKey: "test"})
	err := v.Validate(validCallbackBody(t, "test"))

	var mismatch *hutko.MerchantMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 555, mismatch.Expected)
	assert.Equal(t, "1700002", mismatch.Received)
}

func TestValidate_MissingMerchantID(t *testing.T) {
	v := hutko.NewValidator(hutko.TestCredentials())
	body := hutko.Fields{"order_id": "42", "signature": "x"}

	var mismatch *hutko.MerchantMismatchError
	require.ErrorAs(t, v.Validate(body), &mismatch)
	assert.Equal(t, "", mismatch.Received)
}

func TestValidate_BadSignature(t *testing.T) {
	v := hutko.NewValidator(hutko.TestCredentials())
	body := validCallbackBody(t, hutko.TestSecretKey)
	body["signature"] = "deadbeef"
	assert.ErrorIs(t, v.Validate(body), hutko.ErrInvalidSignature)
}

func TestValidate_TamperedField(t *testing.T) {
	v := hutko.NewValidator(hutko.TestCredentials())
	body := validCallbackBody(t, hutko.TestSecretKey)
	body["order_id"] = "43"
	assert.ErrorIs(t, v.Validate(body), hutko.ErrInvalidSignature)
}

func TestValidate_IgnoresResponseSignatureString(t *testing.T) {
	v := hutko.NewValidator(hutko.TestCredentials())
	body := validCallbackBody(t, hutko.TestSecretKey)
	body["response_signature_string"] = "test|1700002|42|success"
	assert.NoError(t, v.Validate(body))
}

func TestValidate_DoesNotMutateBody(t *testing.T) {
	v := hutko.NewValidator(hutko.TestCredentials())
	body := validCallbackBody(t, hutko.TestSecretKey)
	require.NoError(t, v.Validate(body))
	assert.Contains(t, body, "signature")
	assert.Contains(t, body, "merchant_id")
}
