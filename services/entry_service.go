package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pivoLogAPI/internal/beer"
	"pivoLogAPI/internal/drinkingday"
	"pivoLogAPI/internal/entry"
)

type EntryService struct {
	db *pgxpool.Pool
}

func NewEntryService(db *pgxpool.Pool) *EntryService {
	return &EntryService{db: db}
}

// QuickAdd validates and persists one consumption entry. ConsumedAt
// defaults to now; callers run the achievement check afterwards.
func (s *EntryService) QuickAdd(ctx context.Context, userID uuid.UUID, req *entry.QuickAddRequest, now time.Time) (*entry.Entry, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	volumeML := req.VolumeML
	if volumeML == 0 {
		volumeML = entry.DefaultVolumeML
	}
	if volumeML < entry.MinVolumeML || volumeML > entry.MaxVolumeML {
		return nil, fmt.Errorf("volume must be between %d and %d ml", entry.MinVolumeML, entry.MaxVolumeML)
	}

	e := &entry.Entry{
		ID:             uuid.New(),
		UserID:         userID,
		CustomBeerName: req.CustomBeerName,
		Quantity:       req.Quantity,
		VolumeML:       volumeML,
		ConsumedAt:     now,
	}
	if req.ConsumedAt != nil {
		e.ConsumedAt = *req.ConsumedAt
	}

	if req.BeerID != nil {
		beerID, err := uuid.Parse(*req.BeerID)
		if err != nil {
			return nil, fmt.Errorf("invalid beer id")
		}
		e.BeerID = &beerID
	}
	if req.GroupID != nil {
		groupID, err := uuid.Parse(*req.GroupID)
		if err != nil {
			return nil, fmt.Errorf("invalid group id")
		}
		e.GroupID = &groupID
	}

	query := `
	INSERT INTO entries (id, user_id, group_id, beer_id, custom_beer_name, quantity, volume_ml, consumed_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	RETURNING created_at
	`

	err := s.db.QueryRow(ctx, query,
		e.ID, e.UserID, e.GroupID, e.BeerID, e.CustomBeerName, e.Quantity, e.VolumeML, e.ConsumedAt,
	).Scan(&e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to log entry: %w", err)
	}

	return e, nil
}

// GetToday returns the user's entries inside the current drinking day,
// newest first.
func (s *EntryService) GetToday(ctx context.Context, userID uuid.UUID, now time.Time) ([]*entry.EntryView, error) {
	dayStart := drinkingday.DayStart(now)
	dayEnd := drinkingday.DayEnd(now)

	query := `
	SELECT e.id, COALESCE(b.name, e.custom_beer_name, 'Neznámé pivo'), e.quantity, e.volume_ml, e.consumed_at
	FROM entries e
	LEFT JOIN beers b ON b.id = e.beer_id
	WHERE e.user_id = $1 AND e.consumed_at >= $2 AND e.consumed_at < $3
	ORDER BY e.consumed_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch today's entries: %w", err)
	}
	defer rows.Close()

	views := []*entry.EntryView{}
	for rows.Next() {
		v := &entry.EntryView{}
		if err := rows.Scan(&v.ID, &v.BeerName, &v.Quantity, &v.VolumeML, &v.ConsumedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		views = append(views, v)
	}

	return views, rows.Err()
}

// Delete removes an entry owned by the user.
func (s *EntryService) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM entries WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("entry not found")
	}
	return nil
}

// SearchBeers looks up catalog beers by name or brewery.
func (s *EntryService) SearchBeers(ctx context.Context, search string) ([]*beer.Beer, error) {
	query := `
	SELECT id, name, brewery, alcohol_pct, created_at
	FROM beers
	WHERE name ILIKE $1 OR brewery ILIKE $1
	ORDER BY name
	LIMIT 25
	`

	rows, err := s.db.Query(ctx, query, "%"+search+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search beers: %w", err)
	}
	defer rows.Close()

	beers := []*beer.Beer{}
	for rows.Next() {
		b := &beer.Beer{}
		if err := rows.Scan(&b.ID, &b.Name, &b.Brewery, &b.AlcoholPct, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan beer: %w", err)
		}
		beers = append(beers, b)
	}

	return beers, rows.Err()
}

// GetByID fetches one entry, used for ownership checks.
func (s *EntryService) GetByID(ctx context.Context, entryID uuid.UUID) (*entry.Entry, error) {
	e := &entry.Entry{}
	query := `
	SELECT id, user_id, group_id, beer_id, custom_beer_name, quantity, volume_ml, consumed_at, created_at
	FROM entries
	WHERE id = $1
	`

	err := s.db.QueryRow(ctx, query, entryID).Scan(
		&e.ID, &e.UserID, &e.GroupID, &e.BeerID, &e.CustomBeerName,
		&e.Quantity, &e.VolumeML, &e.ConsumedAt, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("entry not found")
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return e, nil
}
