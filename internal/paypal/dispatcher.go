package paypal

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Makra-ca/frum-toronto-sub001/internal/business"
	"github.com/Makra-ca/frum-toronto-sub001/internal/database"
	"github.com/Makra-ca/frum-toronto-sub001/internal/logs"
	"github.com/Makra-ca/frum-toronto-sub001/internal/plan"
	"github.com/Makra-ca/frum-toronto-sub001/internal/subscription"
)

// Chaque handler est autonome : s'il ne retrouve pas la ligne attendue ou ne
// peut pas décoder sa resource, il journalise et abandonne son propre travail
// sans faire échouer la requête (PayPal reçoit l'acquittement dans tous les
// cas, c'est lui qui relivre).

// addCycle prolonge une date d'exactement un cycle de facturation
func addCycle(t time.Time, cycle string) time.Time {
	if cycle == plan.CycleYearly {
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

func (h *Handler) parseSubscriptionResource(event *WebhookEvent) *SubscriptionResource {
	var res SubscriptionResource
	if err := json.Unmarshal(event.Resource, &res); err != nil || res.ID == "" {
		logs.LogJSON("ERROR", "Unreadable subscription resource in PayPal event", map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.EventType,
		})
		return nil
	}
	return &res
}

// findByPayPalID retrouve la ligne d'abonnement locale par identifiant
// externe ; un échec de correspondance est journalisé et rendu comme absent
func (h *Handler) findByPayPalID(event *WebhookEvent, paypalSubID string) *subscription.Subscription {
	var sub subscription.Subscription
	err := database.DB.Where("paypal_subscription_id = ?", paypalSubID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logs.LogJSON("WARN", "No local subscription for PayPal event", map[string]interface{}{
				"event_type":             event.EventType,
				"paypal_subscription_id": paypalSubID,
			})
		} else {
			logs.LogJSON("ERROR", "Subscription lookup failed", map[string]interface{}{
				"event_type":             event.EventType,
				"paypal_subscription_id": paypalSubID,
				"error":                  err.Error(),
			})
		}
		return nil
	}
	return &sub
}

// resetBusinessToFreePlan ramène le pointeur de plan du commerce sur le plan
// gratuit par défaut
func (h *Handler) resetBusinessToFreePlan(businessID uint) {
	freePlan, err := plan.GetFreePlan()
	if err != nil {
		logs.LogJSON("ERROR", "Free plan not found while downgrading business", map[string]interface{}{
			"business_id": businessID,
			"error":       err.Error(),
		})
		return
	}

	if err := database.DB.Model(&business.Business{}).
		Where("id = ?", businessID).
		Update("plan_id", freePlan.ID).Error; err != nil {
		logs.LogJSON("ERROR", "Business downgrade failed", map[string]interface{}{
			"business_id": businessID,
			"error":       err.Error(),
		})
	}
}

// handleCreated : l'activation est le vrai signal actionnable, la création
// est seulement tracée
func (h *Handler) handleCreated(event *WebhookEvent) {
	logs.LogJSON("INFO", "PayPal subscription created", map[string]interface{}{
		"event_id": event.ID,
	})
}

// handleActivated : upsert idempotent par identifiant d'abonnement externe.
// Une relivraison d'un abonnement déjà actif ne ré-étend jamais la période.
func (h *Handler) handleActivated(event *WebhookEvent) {
	res := h.parseSubscriptionResource(event)
	if res == nil {
		return
	}

	payload, err := ParseCustomPayload(res.CustomID)
	if err != nil {
		logs.LogJSON("ERROR", "Invalid custom payload in activation event", map[string]interface{}{
			"event_id":               event.ID,
			"paypal_subscription_id": res.ID,
			"error":                  err.Error(),
		})
		return
	}

	cycleHint := payload.BillingCycle
	if cycleHint == "" {
		cycleHint = plan.CycleMonthly
	}

	p, cycle, err := plan.ResolveByPayPalPlanID(res.PlanID, cycleHint)
	if err != nil {
		logs.LogJSON("ERROR", "Plan resolution failed", map[string]interface{}{
			"paypal_plan_id": res.PlanID,
			"error":          err.Error(),
		})
		return
	}
	if p == nil {
		logs.LogJSON("WARN", "No local plan for PayPal plan id", map[string]interface{}{
			"paypal_plan_id": res.PlanID,
		})
		return
	}

	now := time.Now()

	var existing subscription.Subscription
	err = database.DB.Where("paypal_subscription_id = ?", res.ID).First(&existing).Error
	switch {
	case err == nil:
		if existing.Status == subscription.StatusActive {
			// Livraison dupliquée : déjà actif, aucune action
			logs.LogJSON("INFO", "Duplicate activation ignored", map[string]interface{}{
				"paypal_subscription_id": res.ID,
			})
			return
		}

		// Réactivation d'un abonnement retombé : nouvelle période complète
		existing.Status = subscription.StatusActive
		existing.PlanID = p.ID
		existing.BillingCycle = cycle
		existing.PayPalPayerID = res.Subscriber.PayerID
		existing.StartDate = now
		existing.EndDate = addCycle(now, cycle)
		existing.CancelledAt = nil
		if err := database.DB.Save(&existing).Error; err != nil {
			logs.LogJSON("ERROR", "Subscription reactivation failed", map[string]interface{}{
				"paypal_subscription_id": res.ID,
				"error":                  err.Error(),
			})
			return
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		sub := subscription.Subscription{
			BusinessID:           payload.BusinessID,
			PlanID:               p.ID,
			Status:               subscription.StatusActive,
			PayPalSubscriptionID: res.ID,
			PayPalPayerID:        res.Subscriber.PayerID,
			BillingCycle:         cycle,
			StartDate:            now,
			EndDate:              addCycle(now, cycle),
		}
		if err := database.DB.Create(&sub).Error; err != nil {
			logs.LogJSON("ERROR", "Subscription creation failed", map[string]interface{}{
				"paypal_subscription_id": res.ID,
				"error":                  err.Error(),
			})
			return
		}

	default:
		logs.LogJSON("ERROR", "Subscription lookup failed", map[string]interface{}{
			"paypal_subscription_id": res.ID,
			"error":                  err.Error(),
		})
		return
	}

	// Pointeur de plan du commerce + passage en modération si le paiement
	// était attendu
	var biz business.Business
	if err := database.DB.First(&biz, "id = ?", payload.BusinessID).Error; err != nil {
		logs.LogJSON("ERROR", "Business not found after activation", map[string]interface{}{
			"business_id": payload.BusinessID,
			"error":       err.Error(),
		})
		return
	}

	updates := map[string]interface{}{"plan_id": p.ID}
	if biz.Status == business.StatusPendingPayment {
		updates["status"] = business.StatusPending
	}
	if err := database.DB.Model(&business.Business{}).Where("id = ?", biz.ID).Updates(updates).Error; err != nil {
		logs.LogJSON("ERROR", "Business plan update failed", map[string]interface{}{
			"business_id": biz.ID,
			"error":       err.Error(),
		})
		return
	}

	logs.LogJSON("INFO", "Subscription activated", map[string]interface{}{
		"business_id":            payload.BusinessID,
		"plan_id":                p.ID,
		"billing_cycle":          cycle,
		"paypal_subscription_id": res.ID,
	})
}

// handleUpdated : changement de plan. Le nouvel identifiant PayPal détermine
// aussi le cycle (slot mensuel ou annuel, avec repli).
func (h *Handler) handleUpdated(event *WebhookEvent) {
	res := h.parseSubscriptionResource(event)
	if res == nil {
		return
	}

	sub := h.findByPayPalID(event, res.ID)
	if sub == nil {
		return
	}

	if res.PlanID == "" {
		logs.LogJSON("WARN", "Plan change event without plan id", map[string]interface{}{
			"paypal_subscription_id": res.ID,
		})
		return
	}

	p, cycle, err := plan.ResolveByPayPalPlanID(res.PlanID, sub.BillingCycle)
	if err != nil {
		logs.LogJSON("ERROR", "Plan resolution failed", map[string]interface{}{
			"paypal_plan_id": res.PlanID,
			"error":          err.Error(),
		})
		return
	}
	if p == nil {
		logs.LogJSON("WARN", "No local plan for PayPal plan id", map[string]interface{}{
			"paypal_plan_id": res.PlanID,
		})
		return
	}

	if err := database.DB.Model(&subscription.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"billing_cycle": cycle,
			"plan_id":       p.ID,
		}).Error; err != nil {
		logs.LogJSON("ERROR", "Subscription plan change failed", map[string]interface{}{
			"paypal_subscription_id": res.ID,
			"error":                  err.Error(),
		})
		return
	}

	// Propagation du nouveau plan au commerce
	if err := database.DB.Model(&business.Business{}).
		Where("id = ?", sub.BusinessID).
		Update("plan_id", p.ID).Error; err != nil {
		logs.LogJSON("ERROR", "Business plan propagation failed", map[string]interface{}{
			"business_id": sub.BusinessID,
			"error":       err.Error(),
		})
	}
}

// handleCancelled : rétrogradation, le commerce repasse sur le plan gratuit
func (h *Handler) handleCancelled(event *WebhookEvent) {
	res := h.parseSubscriptionResource(event)
	if res == nil {
		return
	}

	sub := h.findByPayPalID(event, res.ID)
	if sub == nil {
		return
	}

	if err := database.DB.Model(&subscription.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"status":       subscription.StatusCancelled,
			"cancelled_at": time.Now(),
		}).Error; err != nil {
		logs.LogJSON("ERROR", "Subscription cancellation failed", map[string]interface{}{
			"paypal_subscription_id": res.ID,
			"error":                  err.Error(),
		})
		return
	}

	h.resetBusinessToFreePlan(sub.BusinessID)
}

func (h *Handler) handleSuspended(event *WebhookEvent) {
	res := h.parseSubscriptionResource(event)
	if res == nil {
		return
	}

	sub := h.findByPayPalID(event, res.ID)
	if sub == nil {
		return
	}

	if err := database.DB.Model(&subscription.Subscription{}).
		Where("id = ?", sub.ID).
		Update("status", subscription.StatusSuspended).Error; err != nil {
		logs.LogJSON("ERROR", "Subscription suspension failed", map[string]interface{}{
			"paypal_subscription_id": res.ID,
			"error":                  err.Error(),
		})
	}
}

func (h *Handler) handleExpired(event *WebhookEvent) {
	res := h.parseSubscriptionResource(event)
	if res == nil {
		return
	}

	sub := h.findByPayPalID(event, res.ID)
	if sub == nil {
		return
	}

	if err := database.DB.Model(&subscription.Subscription{}).
		Where("id = ?", sub.ID).
		Update("status", subscription.StatusExpired).Error; err != nil {
		logs.LogJSON("ERROR", "Subscription expiration failed", map[string]interface{}{
			"paypal_subscription_id": res.ID,
			"error":                  err.Error(),
		})
		return
	}

	h.resetBusinessToFreePlan(sub.BusinessID)
}

func (h *Handler) handleReactivated(event *WebhookEvent) {
	res := h.parseSubscriptionResource(event)
	if res == nil {
		return
	}

	sub := h.findByPayPalID(event, res.ID)
	if sub == nil {
		return
	}

	if err := database.DB.Model(&subscription.Subscription{}).
		Where("id = ?", sub.ID).
		Update("status", subscription.StatusActive).Error; err != nil {
		logs.LogJSON("ERROR", "Subscription reactivation failed", map[string]interface{}{
			"paypal_subscription_id": res.ID,
			"error":                  err.Error(),
		})
	}
}

// handlePaymentFailed : seul l'horodatage bouge. L'escalade (suspension)
// arrive par l'événement SUSPENDED que PayPal envoie de son côté.
func (h *Handler) handlePaymentFailed(event *WebhookEvent) {
	res := h.parseSubscriptionResource(event)
	if res == nil {
		return
	}

	result := database.DB.Model(&subscription.Subscription{}).
		Where("paypal_subscription_id = ?", res.ID).
		Update("updated_at", time.Now())
	if result.Error != nil {
		logs.LogJSON("ERROR", "Payment failure touch failed", map[string]interface{}{
			"paypal_subscription_id": res.ID,
			"error":                  result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		logs.LogJSON("WARN", "No local subscription for PayPal event", map[string]interface{}{
			"event_type":             event.EventType,
			"paypal_subscription_id": res.ID,
		})
		return
	}

	logs.LogJSON("WARN", "Subscription payment failed", map[string]interface{}{
		"paypal_subscription_id": res.ID,
	})
}

// handleSaleCompleted : renouvellement. La nouvelle fin de période part de la
// fin courante, jamais de maintenant, pour ne pas perdre le temps déjà payé.
func (h *Handler) handleSaleCompleted(event *WebhookEvent) {
	var sale SaleResource
	if err := json.Unmarshal(event.Resource, &sale); err != nil || sale.BillingAgreementID == "" {
		logs.LogJSON("WARN", "Sale event without billing agreement id", map[string]interface{}{
			"event_id": event.ID,
		})
		return
	}

	sub := h.findByPayPalID(event, sale.BillingAgreementID)
	if sub == nil {
		return
	}

	// Confirmation de l'état en direct côté PayPal ; un échec de cet appel
	// abandonne uniquement ce handler
	details, err := h.client.GetSubscriptionDetails(sale.BillingAgreementID)
	if err != nil {
		logs.LogJSON("ERROR", "Live subscription fetch failed", map[string]interface{}{
			"paypal_subscription_id": sale.BillingAgreementID,
			"error":                  err.Error(),
		})
		return
	}

	newEnd := addCycle(sub.EndDate, sub.BillingCycle)
	if err := database.DB.Model(&subscription.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"end_date": newEnd,
			"status":   subscription.StatusActive,
		}).Error; err != nil {
		logs.LogJSON("ERROR", "Subscription renewal failed", map[string]interface{}{
			"paypal_subscription_id": sale.BillingAgreementID,
			"error":                  err.Error(),
		})
		return
	}

	logs.LogJSON("INFO", "Subscription period extended", map[string]interface{}{
		"paypal_subscription_id": sale.BillingAgreementID,
		"paypal_status":          details.Status,
		"new_end_date":           newEnd,
	})
}
