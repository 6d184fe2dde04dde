package plan

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Makra-ca/frum-toronto-sub001/internal/database"
)

// ResolveByPayPalPlanID retrouve le plan local correspondant à un identifiant
// de plan PayPal. Le slot indiqué par cycleHint est vérifié en premier
// (mensuel par défaut), puis l'autre slot en repli car certains événements
// PayPal arrivent sans cycle fiable. L'absence de correspondance n'est pas une
// erreur : le résultat est (nil, "", nil) et l'appelant décide quoi en faire.
func ResolveByPayPalPlanID(paypalPlanID, cycleHint string) (*Plan, string, error) {
	first, second := CycleMonthly, CycleYearly
	if cycleHint == CycleYearly {
		first, second = CycleYearly, CycleMonthly
	}

	p, err := findBySlot(paypalPlanID, first)
	if err != nil {
		return nil, "", err
	}
	if p != nil {
		return p, first, nil
	}

	p, err = findBySlot(paypalPlanID, second)
	if err != nil {
		return nil, "", err
	}
	if p != nil {
		return p, second, nil
	}

	return nil, "", nil
}

func findBySlot(paypalPlanID, cycle string) (*Plan, error) {
	column := "paypal_plan_id_monthly"
	if cycle == CycleYearly {
		column = "paypal_plan_id_yearly"
	}

	var p Plan
	err := database.DB.Where(column+" = ?", paypalPlanID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetFreePlan retourne le plan gratuit par défaut
func GetFreePlan() (*Plan, error) {
	var p Plan
	if err := database.DB.Where("slug = ?", FreeSlug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
