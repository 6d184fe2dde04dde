package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Makra-ca/frum-toronto-sub001/internal/business"
	"github.com/Makra-ca/frum-toronto-sub001/internal/database"
)

// GetBusinessSubscription GET /api/businesses/:business_id/subscription
// Retourne l'abonnement courant (le plus récent) du commerce, réservé à son
// propriétaire.
func GetBusinessSubscription(c *gin.Context) {
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

	var sub Subscription
	err = database.DB.
		Where("business_id = ?", businessID).
		Order("updated_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Aucun abonnement pour ce commerce"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération de l'abonnement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}
