package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin = "Admin"
	RoleMod   = "Mod"
	RoleUser  = "User"
)

type Address struct {
	Street      string `json:"street" bson:"street"`
	City        string `json:"city" bson:"city"`
	Country     string `json:"country" bson:"country"`
	PostCode    string `json:"post_code" bson:"post_code"`
	HouseNumber string `json:"house_number" bson:"house_number"`
}

type User struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username           string             `json:"username" bson:"username"`
	UsernameNormalized string             `json:"-" bson:"username_normalized"`
	Email              string             `json:"email" bson:"email"`
	EmailNormalized    string             `json:"-" bson:"email_normalized"`
	FirstName          string             `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName           string             `json:"last_name,omitempty" bson:"last_name,omitempty"`
	Phone              string             `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash       string             `json:"-" bson:"password_hash"`
	Roles              []string           `json:"roles" bson:"roles"`
	EmailConfirmed     bool               `json:"email_confirmed" bson:"email_confirmed"`
	ConfirmToken       string             `json:"-" bson:"confirm_token,omitempty"`
	ConfirmExpires     time.Time          `json:"-" bson:"confirm_expires,omitempty"`
	Address            *Address           `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// EditUserRequest carries partial contact updates; empty fields are
// left unchanged.
type EditUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}
