package service

import (
	"mdla_service/internal/model"
	"mdla_service/internal/util"
)

// Actor is the authenticated caller of a service operation. The zero value is anonymous.
type Actor struct {
	UserID uint
	Role   model.UserRole
}

func ActorFromClaims(claims *util.Claims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{UserID: claims.UserID, Role: claims.Role}
}

func (a Actor) Anonymous() bool {
	return a.UserID == 0
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.Admin
}

func (a Actor) IsTeacher() bool {
	return a.Role == model.Teacher
}

// IsStaff reports whether the actor handles orders and sourcing (admin or transit).
func (a Actor) IsStaff() bool {
	return a.Role == model.Admin || a.Role == model.Transit
}

// Owns reports whether the actor is the user identified by userID.
func (a Actor) Owns(userID uint) bool {
	return !a.Anonymous() && a.UserID == userID
}
