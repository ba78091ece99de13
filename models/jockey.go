package models

import "github.com/uptrace/bun"

// Jockey rating bounds.
const (
	JockeyRatingMin = 1
	JockeyRatingMax = 10
)

// Jockey is a rider. May come from the club roster or be linked 1:1
// from a member's UserProfile.
type Jockey struct {
	bun.BaseModel `bun:"table:jockeys,alias:j"`

	ID      int    `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"name,notnull" json:"name"`
	Address string `bun:"address,notnull" json:"address"`
	Age     int    `bun:"age,notnull" json:"age"`
	Rating  int    `bun:"rating,notnull" json:"rating"`
}
