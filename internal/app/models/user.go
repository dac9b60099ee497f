package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Email     string    `json:"email" db:"email" example:"lecturer@luct.ac.ls"`
	Password  string    `json:"-" db:"password"` // bcrypt hash
	Role      Role      `json:"role" db:"role" example:"lecturer"`
	Name      string    `json:"name" db:"name" example:"Thabo Mokoena"`
	Faculty   string    `json:"faculty" db:"faculty" example:"Faculty of ICT (FICT)"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Actor returns the identity context for this user
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, Faculty: u.Faculty}
}
