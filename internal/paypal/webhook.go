package paypal

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Makra-ca/frum-toronto-sub001/internal/config"
	"github.com/Makra-ca/frum-toronto-sub001/internal/logs"
)

type eventHandler func(event *WebhookEvent)

// Handler reçoit les webhooks PayPal et les réconcilie dans les tables
// locales. La configuration (environnement, webhook id, client API) est
// injectée au démarrage.
type Handler struct {
	client    *Client
	env       string
	webhookID string
	handlers  map[string]eventHandler
}

func NewHandler(cfg *config.Config) *Handler {
	h := &Handler{
		client:    NewClient(cfg.PayPal),
		env:       cfg.Env,
		webhookID: cfg.PayPal.WebhookID,
	}

	// Table de transitions : type d'événement → handler. Ajouter un type
	// d'événement PayPal = ajouter une entrée ici.
	h.handlers = map[string]eventHandler{
		EventSubscriptionCreated:     h.handleCreated,
		EventSubscriptionActivated:   h.handleActivated,
		EventSubscriptionUpdated:     h.handleUpdated,
		EventSubscriptionCancelled:   h.handleCancelled,
		EventSubscriptionSuspended:   h.handleSuspended,
		EventSubscriptionExpired:     h.handleExpired,
		EventSubscriptionReactivated: h.handleReactivated,
		EventPaymentFailed:           h.handlePaymentFailed,
		EventSaleCompleted:           h.handleSaleCompleted,
	}
	return h
}

// HandleWebhook POST /api/paypal/webhook
// Lit le corps brut une seule fois (la signature se vérifie sur les octets
// exacts reçus), puis répond toujours {"received": true} une fois le
// traitement terminé : les échecs internes sont journalisés, jamais remontés
// à PayPal, pour éviter les tempêtes de relivraison.
func (h *Handler) HandleWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Lecture du corps échouée"})
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corps JSON invalide"})
		return
	}

	// La signature n'est vérifiée qu'en production et si le webhook id est
	// configuré ; en dehors, le contournement est volontaire pour les tests
	// locaux.
	if h.env == "production" && h.webhookID != "" {
		headers := SignatureHeaders{
			TransmissionID:   c.GetHeader("Paypal-Transmission-Id"),
			TransmissionTime: c.GetHeader("Paypal-Transmission-Time"),
			CertURL:          c.GetHeader("Paypal-Cert-Url"),
			AuthAlgo:         c.GetHeader("Paypal-Auth-Algo"),
			TransmissionSig:  c.GetHeader("Paypal-Transmission-Sig"),
		}

		valid, err := h.client.VerifyWebhookSignature(h.webhookID, headers, payload)
		if err != nil || !valid {
			fields := map[string]interface{}{
				"event_id":   event.ID,
				"event_type": event.EventType,
			}
			if err != nil {
				fields["error"] = err.Error()
			}
			logs.LogJSON("WARN", "PayPal webhook signature verification failed", fields)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Signature PayPal invalide"})
			return
		}
	}

	if handler, ok := h.handlers[event.EventType]; ok {
		handler(&event)
	} else {
		logs.LogJSON("INFO", "Unhandled PayPal event ignored", map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.EventType,
		})
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
