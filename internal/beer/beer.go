package beer

import (
	"time"

	"github.com/google/uuid"
)

type Beer struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Brewery    *string   `json:"brewery" db:"brewery"`
	AlcoholPct *float64  `json:"alcohol_pct" db:"alcohol_pct"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type TopBeer struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type TopBrewery struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
