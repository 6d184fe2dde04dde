package business

import "time"

// Statuts de modération d'un commerce
const (
	StatusPendingPayment = "pending_payment" // en attente du paiement PayPal
	StatusPending        = "pending"         // payé, en attente de modération
	StatusApproved       = "approved"
	StatusRejected       = "rejected"
)

type Business struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	OwnerID     string `gorm:"type:uuid"`
	Name        string
	Slug        string
	Description string
	Address     string
	Phone       string
	Website     string
	Status      string
	PlanID      uint // pointeur dénormalisé vers le plan courant
}
