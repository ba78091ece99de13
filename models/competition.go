package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Competition is a race meeting held at a hippodrome. Date and time are
// kept as separate columns; the combination need not be unique.
type Competition struct {
	bun.BaseModel `bun:"table:competitions,alias:cp"`

	ID           int     `bun:"id,pk,autoincrement" json:"id"`
	Date         string  `bun:"date,notnull,type:date" json:"date"`
	Time         string  `bun:"time,notnull" json:"time"`
	HippodromeID int     `bun:"hippodrome_id,notnull" json:"hippodromeID"`
	Name         *string `bun:"name" json:"name,omitempty"`

	Hippodrome *Hippodrome `bun:"rel:belongs-to,join:hippodrome_id=id" json:"hippodrome,omitempty"`
}

// StartsAt combines the date and time columns into a single moment.
func (c *Competition) StartsAt() (time.Time, error) {
	at, err := time.ParseInLocation("2006-01-02 15:04", c.Date+" "+c.Time, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("competition %d has malformed date/time: %w", c.ID, err)
	}
	return at, nil
}
