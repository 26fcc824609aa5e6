package hutko_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path        string
	ContentType string
	Body        map[string]map[string]any
}

// newTestServer returns a client pointed at a stub API that answers every
// endpoint with the given wrapped response.
func newTestServer(t *testing.T, status int, response map[string]any) (*hutko.Client, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.ContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.Body))

		w.WriteHeader(status)
		if response != nil {
			json.NewEncoder(w).Encode(map[string]any{"response": response})
		}
	}))
	t.Cleanup(srv.Close)

	client := hutko.NewClient(hutko.TestCredentials(), hutko.WithAPIURL(srv.URL+"/"))
	return client, captured
}

func TestCheckoutURL_Success(t *testing.T) {
	client, captured := newTestServer(t, http.StatusOK, map[string]any{
		"response_status": "success",
		"checkout_url":    "https://pay.hutko.org/go/abc",
	})

	url, err := client.CheckoutURL(context.Background(), hutko.Fields{
		"order_id": "42",
		"amount":   10000,
		"currency": "UAH",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.hutko.org/go/abc", url)
	assert.Equal(t, "/checkout/url", captured.Path)
	assert.Equal(t, "application/json;charset=UTF-8", captured.ContentType)
}

func TestSend_AttachesMerchantAndSignature(t *testing.T) {
	client, captured := newTestServer(t, http.StatusOK, map[string]any{
		"response_status": "success",
		"token":           "tok",
	})

	_, err := client.CheckoutToken(context.Background(), hutko.Fields{"order_id": "42"})
	require.NoError(t, err)

	request := captured.Body["request"]
	require.NotNil(t, request)
	assert.EqualValues(t, hutko.TestMerchantID, request["merchant_id"])

	// the attached signature must verify with the merchant secret
	fields := hutko.Fields{}
	for k, v := range request {
		if k != "signature" {
			fields[k] = v
		}
	}
	assert.Equal(t, request["signature"], hutko.Sign(fields, hutko.TestSecretKey))
}

func TestSend_DoesNotMutateCallerFields(t *testing.T) {
	client, _ := newTestServer(t, http.StatusOK, map[string]any{
		"response_status": "success",
		"checkout_url":    "u",
	})

	fields := hutko.Fields{"order_id": "42"}
	_, err := client.CheckoutURL(context.Background(), fields)
	require.NoError(t, err)
	assert.NotContains(t, fields, "merchant_id")
	assert.NotContains(t, fields, "signature")
}

func TestSend_NonOKStatus(t *testing.T) {
	client, _ := newTestServer(t, http.StatusBadGateway, nil)

	_, err := client.Reverse(context.Background(), hutko.Fields{"order_id": "42"})

	var statusErr *hutko.UnexpectedStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
}

func TestSend_MissingResponseWrapper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	t.Cleanup(srv.Close)
	client := hutko.NewClient(hutko.TestCredentials(), hutko.WithAPIURL(srv.URL+"/"))

	_, err := client.Capture(context.Background(), hutko.Fields{"order_id": "42"})

	var protoErr *hutko.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestSend_MissingResponseStatus(t *testing.T) {
	client, _ := newTestServer(t, http.StatusOK, map[string]any{"order_id": "42"})

	_, err := client.Recurring(context.Background(), hutko.Fields{"order_id": "42"})

	var protoErr *hutko.ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestSend_DeclinedCarriesProcessorMessage(t *testing.T) {
	decline := map[string]any{
		"response_status": "failure",
		"error_message":   "Insufficient funds",
	}

	ops := map[string]func(*hutko.Client) error{
		"checkout_url": func(c *hutko.Client) error {
			_, err := c.CheckoutURL(context.Background(), hutko.Fields{"order_id": "1"})
			return err
		},
		"checkout_token": func(c *hutko.Client) error {
			_, err := c.CheckoutToken(context.Background(), hutko.Fields{"order_id": "1"})
			return err
		},
		"reverse": func(c *hutko.Client) error {
			_, err := c.Reverse(context.Background(), hutko.Fields{"order_id": "1"})
			return err
		},
		"capture": func(c *hutko.Client) error {
			_, err := c.Capture(context.Background(), hutko.Fields{"order_id": "1"})
			return err
		},
		"recurring": func(c *hutko.Client) error {
			_, err := c.Recurring(context.Background(), hutko.Fields{"order_id": "1"})
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestServer(t, http.StatusOK, decline)
			err := op(client)

			var declined *hutko.DeclinedError
			require.ErrorAs(t, err, &declined)
			assert.Equal(t, "Insufficient funds", declined.Message)
		})
	}
}

func TestSend_TransportError(t *testing.T) {
	client := hutko.NewClient(hutko.TestCredentials(), hutko.WithAPIURL("http://127.0.0.1:1/"))

	_, err := client.Reverse(context.Background(), hutko.Fields{"order_id": "42"})

	var transportErr *hutko.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestResponse_Getters(t *testing.T) {
	resp := hutko.Response{
		"response_status": "success",
		"error_message":   "",
		"request_id":      json.Number("987"),
	}
	assert.Equal(t, "success", resp.Status())
	assert.Equal(t, "", resp.ErrorMessage())
	assert.Equal(t, "987", resp.RequestID())
	assert.Equal(t, "", resp.Get("missing"))
}
