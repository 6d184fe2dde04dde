package plan

import "time"

// Slug du plan gratuit par défaut, attribué quand un abonnement tombe
const FreeSlug = "free"

// Cycles de facturation
const (
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
)

type Plan struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Name         string
	Slug         string `gorm:"uniqueIndex"`
	Description  string
	PriceMonthly float64
	PriceYearly  float64
	// Un identifiant de plan PayPal par cycle de facturation, unique dans son slot
	PayPalPlanIDMonthly string `gorm:"column:paypal_plan_id_monthly"`
	PayPalPlanIDYearly  string `gorm:"column:paypal_plan_id_yearly"`
}
