package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role identifies what an actor is allowed to do within the grievance core.
type Role string

const (
	RoleCitizen     Role = "citizen"
	RoleOfficer     Role = "officer"
	RoleDeptAdmin   Role = "dept_admin"
	RoleSystemAdmin Role = "system_admin"
	// RoleSystem is the internal actor used by scheduled jobs such as the
	// SLA sweep. It is never issued in a token.
	RoleSystem Role = "system"
)

// Valid reports whether the role is one of the issued (token-carried) roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleOfficer, RoleDeptAdmin, RoleSystemAdmin:
		return true
	default:
		return false
	}
}

// Actor is the verified identity acting on a grievance. Token verification
// happens upstream; the core only ever sees the resulting pair.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// SystemActor is the actor attached to sweep-generated ledger events.
var SystemActor = Actor{ID: "system", Role: RoleSystem}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Role     Role   `json:"role"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor extracts the verified (actorID, role) pair from the claims.
func (c *JWTClaims) Actor() Actor {
	return Actor{ID: c.UserID, Role: c.Role}
}
