package plan

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Makra-ca/frum-toronto-sub001/internal/database"
	"github.com/Makra-ca/frum-toronto-sub001/internal/logs"
)

// GetPlans GET /api/plans
func GetPlans(c *gin.Context) {
	var plans []Plan
	if err := database.DB.Order("price_monthly ASC").Find(&plans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des plans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

type planInput struct {
	Name                string  `json:"name"`
	Slug                string  `json:"slug"`
	Description         string  `json:"description"`
	PriceMonthly        float64 `json:"price_monthly"`
	PriceYearly         float64 `json:"price_yearly"`
	PayPalPlanIDMonthly string  `json:"paypal_plan_id_monthly"`
	PayPalPlanIDYearly  string  `json:"paypal_plan_id_yearly"`
}

// paypalIDTaken vérifie l'unicité d'un identifiant PayPal dans son slot de
// cycle, en excluant éventuellement un plan existant (cas de la mise à jour)
func paypalIDTaken(column, paypalID string, excludeID uint) bool {
	if paypalID == "" {
		return false
	}
	var count int64
	q := database.DB.Model(&Plan{}).Where(column+" = ?", paypalID)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	q.Count(&count)
	return count > 0
}

// CreatePlan POST /api/admin/plans
func CreatePlan(c *gin.Context) {
	userID := c.GetString("user_id")

	var input planInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	if input.Name == "" || input.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants"})
		return
	}

	if paypalIDTaken("paypal_plan_id_monthly", input.PayPalPlanIDMonthly, 0) ||
		paypalIDTaken("paypal_plan_id_yearly", input.PayPalPlanIDYearly, 0) {
		c.JSON(http.StatusConflict, gin.H{"error": "Identifiant de plan PayPal déjà utilisé"})
		return
	}

	p := Plan{
		Name:                input.Name,
		Slug:                input.Slug,
		Description:         input.Description,
		PriceMonthly:        input.PriceMonthly,
		PriceYearly:         input.PriceYearly,
		PayPalPlanIDMonthly: input.PayPalPlanIDMonthly,
		PayPalPlanIDYearly:  input.PayPalPlanIDYearly,
	}
	if err := database.DB.Create(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du plan"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"plan": p})
	logs.LogJSON("INFO", "Plan created", map[string]interface{}{
		"plan_id": p.ID,
		"slug":    p.Slug,
		"userID":  userID,
	})
}

// UpdatePlan PUT /api/admin/plans/:plan_id
func UpdatePlan(c *gin.Context) {
	userID := c.GetString("user_id")

	planID, err := strconv.ParseUint(c.Param("plan_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de plan invalide"})
		return
	}

	var existing Plan
	if err := database.DB.First(&existing, "id = ?", planID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan introuvable"})
		return
	}

	var input planInput
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	if paypalIDTaken("paypal_plan_id_monthly", input.PayPalPlanIDMonthly, existing.ID) ||
		paypalIDTaken("paypal_plan_id_yearly", input.PayPalPlanIDYearly, existing.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "Identifiant de plan PayPal déjà utilisé"})
		return
	}

	if input.Name != "" {
		existing.Name = input.Name
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.PriceMonthly > 0 {
		existing.PriceMonthly = input.PriceMonthly
	}
	if input.PriceYearly > 0 {
		existing.PriceYearly = input.PriceYearly
	}
	if input.PayPalPlanIDMonthly != "" {
		existing.PayPalPlanIDMonthly = input.PayPalPlanIDMonthly
	}
	if input.PayPalPlanIDYearly != "" {
		existing.PayPalPlanIDYearly = input.PayPalPlanIDYearly
	}

	if err := database.DB.Save(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": existing})
	logs.LogJSON("INFO", "Plan updated", map[string]interface{}{
		"plan_id": existing.ID,
		"userID":  userID,
	})
}
