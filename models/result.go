package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Result is one horse+jockey placement within a competition. TimeResult is
// stored as nanoseconds. (competition_id, position) and
// (competition_id, horse_id) are unique at the storage layer.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID            int           `bun:"id,pk,autoincrement" json:"id"`
	CompetitionID int           `bun:"competition_id,notnull" json:"competitionID"`
	HorseID       int           `bun:"horse_id,notnull" json:"horseID"`
	JockeyID      int           `bun:"jockey_id,notnull" json:"jockeyID"`
	Position      int           `bun:"position,notnull" json:"position"`
	TimeResult    time.Duration `bun:"time_result,notnull" json:"-"`

	Competition *Competition `bun:"rel:belongs-to,join:competition_id=id" json:"competition,omitempty"`
	Horse       *Horse       `bun:"rel:belongs-to,join:horse_id=id" json:"horse,omitempty"`
	Jockey      *Jockey      `bun:"rel:belongs-to,join:jockey_id=id" json:"jockey,omitempty"`
}

// FormattedTime renders the elapsed time as MM:SS.mmm.
func (r *Result) FormattedTime() string {
	d := r.TimeResult
	if d <= 0 {
		return "00:00.000"
	}
	total := int(d / time.Second)
	ms := int(d/time.Millisecond) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", total/60, total%60, ms)
}
