package entry

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one logged consumption fact. Immutable once created; owned by
// the logging user. Exactly one of BeerID / CustomBeerName identifies the
// beer (both may be unset for an anonymous quick-add).
type Entry struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	GroupID        *uuid.UUID `json:"group_id" db:"group_id"`
	BeerID         *uuid.UUID `json:"beer_id" db:"beer_id"`
	CustomBeerName *string    `json:"custom_beer_name" db:"custom_beer_name"`
	Quantity       int        `json:"quantity" db:"quantity"`
	VolumeML       int        `json:"volume_ml" db:"volume_ml"`
	ConsumedAt     time.Time  `json:"consumed_at" db:"consumed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

const (
	MinVolumeML     = 100
	MaxVolumeML     = 2000
	DefaultVolumeML = 500
)

type QuickAddRequest struct {
	BeerID         *string    `json:"beer_id"`
	CustomBeerName *string    `json:"custom_beer_name"`
	GroupID        *string    `json:"group_id"`
	Quantity       int        `json:"quantity"`
	VolumeML       int        `json:"volume_ml"`
	ConsumedAt     *time.Time `json:"consumed_at"`
}

// EntryView is the API shape of an entry with the beer name resolved.
type EntryView struct {
	ID         uuid.UUID `json:"id"`
	BeerName   string    `json:"beer_name"`
	Quantity   int       `json:"quantity"`
	VolumeML   int       `json:"volume_ml"`
	ConsumedAt time.Time `json:"consumed_at"`
}
