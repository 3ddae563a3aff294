package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are JWT claims identifying a signed-in user.
type UserClaims struct {
	UserID string `json:"uid"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the resolved identity of a request. A nil *Principal is an anonymous caller.
type Principal struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// IsTutor reports whether the principal signed in as a tutor.
func (p *Principal) IsTutor() bool {
	return p != nil && p.Role == RoleTutor
}
