package models

import "github.com/uptrace/bun"

// Owner is a horse owner. Phone is stored normalized (+7XXXXXXXXXX).
type Owner struct {
	bun.BaseModel `bun:"table:owners,alias:o"`

	ID      int    `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"name,notnull" json:"name"`
	Address string `bun:"address,notnull" json:"address"`
	Phone   string `bun:"phone,notnull" json:"phone"`
}
