// internal/admin/handler.go
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Makra-ca/frum-toronto-sub001/internal/business"
	"github.com/Makra-ca/frum-toronto-sub001/internal/database"
	"github.com/Makra-ca/frum-toronto-sub001/internal/logs"
	"github.com/Makra-ca/frum-toronto-sub001/internal/subscription"
)

// GetDashboardStats GET /api/admin/stats
func GetDashboardStats(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	// Paramètres optionnels
	startDateStr := c.Query("start_date")
	endDateStr := c.Query("end_date")

	var startDate, endDate time.Time
	var err error

	// Parse des dates si fournies
	if startDateStr != "" {
		startDate, err = time.Parse("2006-01-02", startDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide pour start_date"})
			return
		}
	} else {
		startDate = time.Now().AddDate(0, 0, -30) // 30 jours par défaut
	}

	if endDateStr != "" {
		endDate, err = time.Parse("2006-01-02", endDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide pour end_date"})
			return
		}
	} else {
		endDate = time.Now()
	}

	// Statistiques générales
	var totalBusinesses, pendingModeration, approvedBusinesses int64
	var activeSubscriptions, cancelledInRange int64

	// Total des commerces
	database.DB.Table("businesses").Count(&totalBusinesses)

	// Commerces en attente de modération
	database.DB.Table("businesses").Where("status = ?", business.StatusPending).Count(&pendingModeration)

	// Commerces approuvés
	database.DB.Table("businesses").Where("status = ?", business.StatusApproved).Count(&approvedBusinesses)

	// Abonnements actifs
	database.DB.Table("subscriptions").Where("status = ?", subscription.StatusActive).Count(&activeSubscriptions)

	// Annulations sur la période
	database.DB.Table("subscriptions").
		Where("cancelled_at BETWEEN ? AND ?", startDate, endDate).
		Count(&cancelledInRange)

	stats := gin.H{
		"total_businesses":     totalBusinesses,
		"pending_moderation":   pendingModeration,
		"approved_businesses":  approvedBusinesses,
		"active_subscriptions": activeSubscriptions,
		"cancelled_in_range":   cancelledInRange,
		"date_range": gin.H{
			"start": startDate.Format("2006-01-02"),
			"end":   endDate.Format("2006-01-02"),
		},
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
	logs.LogJSON("INFO", "Admin stats retrieved successfully", map[string]interface{}{
		"route":  route,
		"userID": userID,
	})
}

// GetBusinesses GET /api/admin/businesses?status=pending
func GetBusinesses(c *gin.Context) {
	status := c.Query("status")

	query := database.DB.Model(&business.Business{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var businesses []business.Business
	if err := query.Limit(100).Find(&businesses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des commerces"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"businesses": businesses})
}

// setModerationStatus factorise approbation et rejet : seul un commerce en
// attente de modération peut être tranché
func setModerationStatus(c *gin.Context, newStatus string) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	businessID, err := strconv.ParseUint(c.Param("business_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de commerce invalide"})
		return
	}

	var biz business.Business
	if err := database.DB.First(&biz, "id = ?", businessID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commerce introuvable"})
		return
	}

	if biz.Status != business.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Le commerce n'est pas en attente de modération"})
		return
	}

	if err := database.DB.Model(&business.Business{}).
		Where("id = ?", biz.ID).
		Update("status", newStatus).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du statut"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": newStatus})
	logs.LogJSON("INFO", "Business moderation decision", map[string]interface{}{
		"route":       route,
		"userID":      userID,
		"business_id": biz.ID,
		"status":      newStatus,
	})
}

// ApproveBusiness PUT /api/admin/businesses/:business_id/approve
func ApproveBusiness(c *gin.Context) {
	setModerationStatus(c, business.StatusApproved)
}

// RejectBusiness PUT /api/admin/businesses/:business_id/reject
func RejectBusiness(c *gin.Context) {
	setModerationStatus(c, business.StatusRejected)
}

// GetSubscriptions GET /api/admin/subscriptions?status=active
func GetSubscriptions(c *gin.Context) {
	status := c.Query("status")

	query := database.DB.Model(&subscription.Subscription{}).Order("updated_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var subs []subscription.Subscription
	if err := query.Limit(100).Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des abonnements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}
