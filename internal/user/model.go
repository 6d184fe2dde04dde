package user

import "time"

type User struct {
	ID        string `gorm:"primaryKey"` // UUID venant du fournisseur d'auth
	CreatedAt time.Time
	Username  string
	Firstname string
	Lastname  string
	Email     string
	Language  string
	IsAdmin   bool
}
