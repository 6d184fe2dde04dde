package paypal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Makra-ca/frum-toronto-sub001/internal/config"
)

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/paypal/webhook", h.HandleWebhook)
	return r
}

func postWebhook(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/paypal/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleWebhookUnknownEventType(t *testing.T) {
	mock := setupMockDB(t)
	h := NewHandler(&config.Config{})
	r := setupRouter(h)

	// Type inconnu : acquittement sans aucune écriture en base
	w := postWebhook(r, []byte(`{"id":"WH-10","event_type":"FOO.BAR"}`))

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["received"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleWebhookMalformedBody(t *testing.T) {
	mock := setupMockDB(t)
	h := NewHandler(&config.Config{})
	r := setupRouter(h)

	// JSON invalide : rejet client avant tout effet de bord
	w := postWebhook(r, []byte(`{pas du json`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleWebhookSignatureFailureInProduction(t *testing.T) {
	mock := setupMockDB(t)

	ts := fakePayPalServer(t, "ACTIVE") // la vérification répond FAILURE
	defer ts.Close()

	h := NewHandler(&config.Config{
		Env: "production",
		PayPal: config.PayPalConfig{
			ClientID:  "id",
			Secret:    "secret",
			WebhookID: "WH-ID-1",
			BaseURL:   ts.URL,
		},
	})
	r := setupRouter(h)

	body := []byte(`{"id":"WH-11","event_type":"BILLING.SUBSCRIPTION.ACTIVATED","resource":{"id":"I-X"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/paypal/webhook", bytes.NewReader(body))
	req.Header.Set("Paypal-Transmission-Id", "tid")
	req.Header.Set("Paypal-Transmission-Time", "2025-01-01T00:00:00Z")
	req.Header.Set("Paypal-Cert-Url", "https://api.paypal.com/cert")
	req.Header.Set("Paypal-Auth-Algo", "SHA256withRSA")
	req.Header.Set("Paypal-Transmission-Sig", "sig")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Signature invalide : non autorisé, aucune mutation
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleWebhookSignatureSkippedOutsideProduction(t *testing.T) {
	mock := setupMockDB(t)
	h := NewHandler(&config.Config{
		Env: "development",
		PayPal: config.PayPalConfig{
			WebhookID: "WH-ID-1",
			// Pas d'URL de base : tout appel réseau ferait échouer le test
		},
	})
	r := setupRouter(h)

	// Hors production le contournement est volontaire : l'événement inconnu
	// est acquitté sans appel de vérification
	w := postWebhook(r, []byte(`{"id":"WH-12","event_type":"FOO.BAR"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Scénario complet : BILLING.SUBSCRIPTION.ACTIVATED pour le commerce 42 sur
// P_MONTHLY_1 → ligne d'abonnement active et pointeur de plan mis à jour
func TestHandleWebhookActivatedScenario(t *testing.T) {
	mock := setupMockDB(t)
	h := NewHandler(&config.Config{Env: "development"})
	r := setupRouter(h)

	mock.ExpectQuery(`SELECT (.+) FROM "plans"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug"}).AddRow(3, "basic"))
	mock.ExpectQuery(`SELECT (.+) FROM "subscriptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "subscriptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT (.+) FROM "businesses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(42, "pending_payment"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "businesses"`).
		WithArgs(3, "pending", sqlmock.AnyArg(), 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := []byte(`{
		"id": "WH-13",
		"event_type": "BILLING.SUBSCRIPTION.ACTIVATED",
		"resource": {
			"id": "I-TEST123",
			"plan_id": "P_MONTHLY_1",
			"custom_id": "{\"businessId\":42,\"userId\":\"7\",\"billingCycle\":\"monthly\"}",
			"subscriber": {"payer_id": "PAYER-1"}
		}
	}`)
	w := postWebhook(r, body)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["received"])

	assert.NoError(t, mock.ExpectationsWereMet())
}
