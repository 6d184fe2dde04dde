package business

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Makra-ca/frum-toronto-sub001/internal/database"
)

// IsOwner vérifie que l'utilisateur est bien le propriétaire du commerce
func IsOwner(businessID uint, userID string) (bool, error) {
	var b Business
	err := database.DB.Select("owner_id").Where("id = ?", businessID).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil // commerce introuvable
		}
		return false, err
	}
	return b.OwnerID == userID, nil
}
