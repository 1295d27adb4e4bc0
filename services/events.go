package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pivoLogAPI/internal/stats"
)

// loadUserEvents fetches a user's full entry history with breweries
// resolved, the input for every pure aggregation.
func loadUserEvents(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) ([]stats.Event, error) {
	query := `
	SELECT e.quantity, e.volume_ml, e.consumed_at, e.beer_id, b.brewery
	FROM entries e
	LEFT JOIN beers b ON b.id = e.beer_id
	WHERE e.user_id = $1
	`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	defer rows.Close()

	var events []stats.Event
	for rows.Next() {
		var e stats.Event
		if err := rows.Scan(&e.Quantity, &e.VolumeML, &e.ConsumedAt, &e.BeerID, &e.Brewery); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return events, nil
}
