package paypal

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Makra-ca/frum-toronto-sub001/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.PayPalConfig{
		ClientID: "client-id",
		Secret:   "client-secret",
		BaseURL:  baseURL,
	})
}

func TestVerifyWebhookSignature(t *testing.T) {
	tests := []struct {
		name          string
		status        string
		expectedValid bool
	}{
		{name: "Signature acceptée", status: "SUCCESS", expectedValid: true},
		{name: "Signature refusée", status: "FAILURE", expectedValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verifyPayload map[string]interface{}

			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/v1/oauth2/token":
					// L'échange de token passe par Basic Auth
					username, password, ok := r.BasicAuth()
					assert.True(t, ok)
					assert.Equal(t, "client-id", username)
					assert.Equal(t, "client-secret", password)
					fmt.Fprint(w, `{"access_token":"test-token","expires_in":3600}`)
				case "/v1/notifications/verify-webhook-signature":
					assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
					body, _ := io.ReadAll(r.Body)
					assert.NoError(t, json.Unmarshal(body, &verifyPayload))
					fmt.Fprintf(w, `{"verification_status":%q}`, tt.status)
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			}))
			defer ts.Close()

			cl := newTestClient(ts.URL)
			headers := SignatureHeaders{
				TransmissionID:   "tid",
				TransmissionTime: "2025-01-01T00:00:00Z",
				CertURL:          "https://api.paypal.com/cert",
				AuthAlgo:         "SHA256withRSA",
				TransmissionSig:  "sig",
			}
			rawBody := []byte(`{"id":"WH-1","event_type":"BILLING.SUBSCRIPTION.ACTIVATED"}`)

			valid, err := cl.VerifyWebhookSignature("WH-ID-1", headers, rawBody)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedValid, valid)

			// Le corps brut doit être transmis tel quel, pas re-sérialisé
			assert.Equal(t, "tid", verifyPayload["transmission_id"])
			assert.Equal(t, "WH-ID-1", verifyPayload["webhook_id"])
			event, ok := verifyPayload["webhook_event"].(map[string]interface{})
			assert.True(t, ok)
			assert.Equal(t, "WH-1", event["id"])
		})
	}
}

func TestGetSubscriptionDetails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			fmt.Fprint(w, `{"access_token":"test-token","expires_in":3600}`)
		case "/v1/billing/subscriptions/I-TEST123":
			fmt.Fprint(w, `{"id":"I-TEST123","plan_id":"P_MONTHLY_1","status":"ACTIVE","subscriber":{"payer_id":"PAYER-1"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	cl := newTestClient(ts.URL)

	details, err := cl.GetSubscriptionDetails("I-TEST123")

	assert.NoError(t, err)
	assert.Equal(t, "I-TEST123", details.ID)
	assert.Equal(t, "P_MONTHLY_1", details.PlanID)
	assert.Equal(t, "ACTIVE", details.Status)
	assert.Equal(t, "PAYER-1", details.Subscriber.PayerID)
}

func TestGetSubscriptionDetailsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			fmt.Fprint(w, `{"access_token":"test-token","expires_in":3600}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	cl := newTestClient(ts.URL)

	_, err := cl.GetSubscriptionDetails("I-ABSENT")

	assert.Error(t, err)
}

func TestCancelSubscription(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			fmt.Fprint(w, `{"access_token":"test-token","expires_in":3600}`)
		case "/v1/billing/subscriptions/I-TEST123/cancel":
			var payload map[string]string
			body, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(body, &payload))
			assert.NotEmpty(t, payload["reason"])
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	cl := newTestClient(ts.URL)

	assert.NoError(t, cl.CancelSubscription("I-TEST123", "Annulation demandée par le commerçant"))
}

func TestTokenRefusedSurfacesError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	defer ts.Close()

	cl := newTestClient(ts.URL)

	_, err := cl.GetSubscriptionDetails("I-TEST123")

	assert.Error(t, err)
}
