// internal/models/user.go
package models

import (
	"database/sql/driver"
	"encoding/json"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string   `json:"name" gorm:"size:100;not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	ProfilePic   string   `json:"profilePic" gorm:"type:text"`
	PhoneNo      string   `json:"phoneNo" gorm:"size:20"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);default:'GENERAL'"`
	Address      Address  `json:"address" gorm:"type:jsonb"`
}

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}

	return json.Unmarshal(bytes, a)
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
