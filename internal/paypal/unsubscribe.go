package paypal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Makra-ca/frum-toronto-sub001/internal/business"
	"github.com/Makra-ca/frum-toronto-sub001/internal/database"
	"github.com/Makra-ca/frum-toronto-sub001/internal/subscription"
)

// Unsubscribe POST /api/paypal/unsubscribe/:business_id
// Annulation à l'initiative du commerçant : annulation côté PayPal puis
// rétrogradation locale, comme le ferait l'événement CANCELLED.
func (h *Handler) Unsubscribe(c *gin.Context) {
	userID := c.GetString("user_id")

	businessID, err := strconv.ParseUint(c.Param("business_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de commerce invalide"})
		return
	}

	owner, err := business.IsOwner(uint(businessID), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification propriétaire"})
		return
	}
	if !owner {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé au propriétaire du commerce"})
		return
	}

	var existing subscription.Subscription
	if err := database.DB.
		Where("business_id = ? AND status = ?", businessID, subscription.StatusActive).
		Order("updated_at DESC").
		First(&existing).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Abonnement actif introuvable"})
		return
	}

	if existing.PayPalSubscriptionID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ID d'abonnement PayPal manquant"})
		return
	}

	if err := h.client.CancelSubscription(existing.PayPalSubscriptionID, "Annulation demandée par le commerçant"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'annulation PayPal"})
		return
	}

	now := time.Now()
	existing.Status = subscription.StatusCancelled
	existing.CancelledAt = &now
	if err := database.DB.Save(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour locale"})
		return
	}

	h.resetBusinessToFreePlan(uint(businessID))

	c.JSON(http.StatusOK, gin.H{"message": "Abonnement annulé"})
}
