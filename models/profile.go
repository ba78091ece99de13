package models

import "github.com/uptrace/bun"

// Roles a profile can carry. Role gates every protected operation.
const (
	RoleUser   = "user"
	RoleJockey = "jockey"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleJockey || role == RoleAdmin
}

// UserProfile carries a user's role, contact details and, for riders,
// the link to their Jockey record.
type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles,alias:up"`

	ID       int     `bun:"id,pk,autoincrement" json:"id"`
	UserID   int     `bun:"user_id,notnull,unique" json:"userID"`
	Role     string  `bun:"role,notnull,default:'user'" json:"role"`
	Phone    *string `bun:"phone" json:"phone,omitempty"`
	Address  *string `bun:"address" json:"address,omitempty"`
	JockeyID *int    `bun:"jockey_id,unique,nullzero" json:"jockeyID,omitempty"`

	User   *User   `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	Jockey *Jockey `bun:"rel:belongs-to,join:jockey_id=id" json:"jockey,omitempty"`
}

// IsJockey reports whether the profile carries the jockey role.
func (p *UserProfile) IsJockey() bool { return p.Role == RoleJockey }

// IsAdmin reports whether the profile carries the admin role.
func (p *UserProfile) IsAdmin() bool { return p.Role == RoleAdmin }
