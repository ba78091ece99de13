package models

import "github.com/uptrace/bun"

// User is an account holder with a bcrypt-hashed password.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int    `bun:"id,pk,autoincrement" json:"id"`
	Username  string `bun:"username,notnull,unique" json:"username"`
	Password  string `bun:"password,notnull" json:"-"`
	Email     string `bun:"email,notnull" json:"email"`
	FirstName string `bun:"first_name" json:"firstName"`
	LastName  string `bun:"last_name" json:"lastName"`
}

// DisplayName is "first last", falling back to the username.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}
