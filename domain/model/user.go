package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// User is a panel operator able to connect accounts and schedule posts.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserName  string    `json:"user_name"`
	Password  string    `json:"-"`
	Guard     string    `json:"guard"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReqLogin is the login request payload.
type ReqLogin struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ReqRegister is the registration request payload.
type ReqRegister struct {
	Name     string `json:"name" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserClaims are the JWT claims issued at login.
type UserClaims struct {
	UserName string `json:"user_name"`
	Guard    string `json:"guard"`
	jwt.StandardClaims
}
