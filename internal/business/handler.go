package business

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Makra-ca/frum-toronto-sub001/internal/database"
	"github.com/Makra-ca/frum-toronto-sub001/internal/logs"
	"github.com/Makra-ca/frum-toronto-sub001/internal/plan"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify transforme un nom de commerce en slug URL
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// CreateBusiness POST /api/businesses
// Le commerce démarre en "pending_payment" sur le plan gratuit ; le webhook
// PayPal le fera passer en "pending" une fois l'abonnement activé.
func CreateBusiness(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Address     string `json:"address"`
		Phone       string `json:"phone"`
		Website     string `json:"website"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	if input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom du commerce requis"})
		return
	}

	biz := Business{
		OwnerID:     userID,
		Name:        input.Name,
		Slug:        Slugify(input.Name),
		Description: input.Description,
		Address:     input.Address,
		Phone:       input.Phone,
		Website:     input.Website,
		Status:      StatusPendingPayment,
	}

	freePlan, err := plan.GetFreePlan()
	if err != nil {
		logs.LogJSON("ERROR", "Free plan not found while creating business", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		biz.PlanID = freePlan.ID
	}

	if err := database.DB.Create(&biz).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du commerce"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"business": biz})
}
