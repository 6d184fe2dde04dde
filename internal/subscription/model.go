package subscription

import "time"

// Statuts du cycle de vie d'un abonnement. Les transitions sont pilotées
// exclusivement par les événements webhook PayPal ; une ligne n'est jamais
// supprimée, seulement rétrogradée.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusSuspended = "suspended"
	StatusExpired   = "expired"
)

type Subscription struct {
	ID                   uint `gorm:"primaryKey"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	BusinessID           uint
	PlanID               uint
	Status               string
	PayPalSubscriptionID string `gorm:"column:paypal_subscription_id;uniqueIndex"`
	PayPalPayerID        string `gorm:"column:paypal_payer_id"`
	BillingCycle         string // monthly | yearly
	StartDate            time.Time
	EndDate              time.Time
	CancelledAt          *time.Time
}
