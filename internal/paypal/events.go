package paypal

import (
	"encoding/json"
	"fmt"

	"github.com/Makra-ca/frum-toronto-sub001/internal/plan"
)

// Types d'événements webhook PayPal pris en charge par le dispatcher
const (
	EventSubscriptionCreated     = "BILLING.SUBSCRIPTION.CREATED"
	EventSubscriptionActivated   = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventSubscriptionUpdated     = "BILLING.SUBSCRIPTION.UPDATED"
	EventSubscriptionCancelled   = "BILLING.SUBSCRIPTION.CANCELLED"
	EventSubscriptionSuspended   = "BILLING.SUBSCRIPTION.SUSPENDED"
	EventSubscriptionExpired     = "BILLING.SUBSCRIPTION.EXPIRED"
	EventSubscriptionReactivated = "BILLING.SUBSCRIPTION.RE-ACTIVATED"
	EventPaymentFailed           = "BILLING.SUBSCRIPTION.PAYMENT.FAILED"
	EventSaleCompleted           = "PAYMENT.SALE.COMPLETED"
)

// WebhookEvent est l'enveloppe commune des événements PayPal. Resource reste
// brut : son schéma dépend du type d'événement.
type WebhookEvent struct {
	ID           string          `json:"id"`
	EventType    string          `json:"event_type"`
	ResourceType string          `json:"resource_type"`
	Summary      string          `json:"summary"`
	Resource     json.RawMessage `json:"resource"`
}

// SubscriptionResource est la resource des événements BILLING.SUBSCRIPTION.*
type SubscriptionResource struct {
	ID         string `json:"id"`
	PlanID     string `json:"plan_id"`
	CustomID   string `json:"custom_id"`
	Status     string `json:"status"`
	Subscriber struct {
		PayerID string `json:"payer_id"`
	} `json:"subscriber"`
}

// SaleResource est la resource de PAYMENT.SALE.COMPLETED ; l'abonnement est
// référencé par billing_agreement_id
type SaleResource struct {
	ID                 string `json:"id"`
	BillingAgreementID string `json:"billing_agreement_id"`
	State              string `json:"state"`
}

// CustomPayload est le contenu typé du champ custom_id, renseigné côté
// front au moment de la souscription
type CustomPayload struct {
	BusinessID   uint   `json:"businessId"`
	UserID       string `json:"userId"`
	BillingCycle string `json:"billingCycle"`
}

// ParseCustomPayload décode et valide le champ custom_id. Un contenu
// malformé est une erreur explicite, pas un parse silencieux.
func ParseCustomPayload(raw string) (*CustomPayload, error) {
	if raw == "" {
		return nil, fmt.Errorf("custom_id vide")
	}

	var p CustomPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("custom_id illisible : %w", err)
	}
	if p.BusinessID == 0 {
		return nil, fmt.Errorf("businessId manquant dans custom_id")
	}
	if p.BillingCycle != "" && p.BillingCycle != plan.CycleMonthly && p.BillingCycle != plan.CycleYearly {
		return nil, fmt.Errorf("billingCycle inconnu : %s", p.BillingCycle)
	}
	return &p, nil
}
