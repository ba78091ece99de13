package models

import "github.com/uptrace/bun"

// Hippodrome is a racetrack competitions are held at.
type Hippodrome struct {
	bun.BaseModel `bun:"table:hippodromes,alias:hd"`

	ID          int     `bun:"id,pk,autoincrement" json:"id"`
	Name        string  `bun:"name,notnull" json:"name"`
	Address     string  `bun:"address,notnull" json:"address"`
	Capacity    *int    `bun:"capacity" json:"capacity,omitempty"`
	Description *string `bun:"description" json:"description,omitempty"`
	IsActive    bool    `bun:"is_active,notnull,default:true" json:"isActive"`
}
