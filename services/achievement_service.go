package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pivoLogAPI/internal/achievement"
	"pivoLogAPI/internal/notification"
	"pivoLogAPI/internal/stats"
)

type AchievementService struct {
	db  *pgxpool.Pool
	fcm *notification.FCMService
}

// NewAchievementService wires the evaluator to storage. fcm may be nil;
// unlock pushes are then skipped.
func NewAchievementService(db *pgxpool.Pool, fcm *notification.FCMService) *AchievementService {
	return &AchievementService{db: db, fcm: fcm}
}

// CheckAndUnlock recomputes the user's snapshot and persists every
// achievement newly crossed. Returns the fresh unlocks so the caller can
// surface them in the response. The push notification is best effort and
// never fails the unlock.
func (s *AchievementService) CheckAndUnlock(ctx context.Context, userID uuid.UUID) ([]achievement.Definition, error) {
	unlocked, err := s.unlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := loadUserEvents(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	newly := achievement.Evaluate(stats.Aggregate(events), unlocked)
	if len(newly) == 0 {
		return nil, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, def := range newly {
		if def.Kind == achievement.KindRepeatable {
			_, err = tx.Exec(ctx, `
				INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at, times_unlocked)
				VALUES ($1, $2, $3, NOW(), 1)
				ON CONFLICT (user_id, achievement_id)
				DO UPDATE SET times_unlocked = user_achievements.times_unlocked + 1, unlocked_at = NOW()
			`, uuid.New(), userID, def.ID)
		} else {
			_, err = tx.Exec(ctx, `
				INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at, times_unlocked)
				VALUES ($1, $2, $3, NOW(), 1)
				ON CONFLICT (user_id, achievement_id) DO NOTHING
			`, uuid.New(), userID, def.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save achievement %s: %w", def.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit achievements: %w", err)
	}

	s.notifyUnlocks(ctx, userID, newly)
	return newly, nil
}

// List returns the full catalog with the user's unlock state and progress.
func (s *AchievementService) List(ctx context.Context, userID uuid.UUID) ([]achievement.WithStatus, error) {
	unlocked, err := s.unlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := loadUserEvents(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	snap := stats.Aggregate(events)

	result := make([]achievement.WithStatus, 0, len(achievement.Catalog()))
	for _, def := range achievement.Catalog() {
		current, target := def.Progress(snap)
		result = append(result, achievement.WithStatus{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Category:    def.Category,
			Unlocked:    unlocked[def.ID],
			Progress:    current,
			Target:      target,
			Percentage:  achievement.ProgressPercent(current, target),
		})
	}
	return result, nil
}

// Summary returns unlock totals plus the three most recent unlocks.
func (s *AchievementService) Summary(ctx context.Context, userID uuid.UUID) (*achievement.Summary, error) {
	all, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	recentRows, err := s.recentUnlocks(ctx, userID, 3)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]achievement.WithStatus, len(all))
	unlockedCount := 0
	for _, a := range all {
		byID[a.ID] = a
		if a.Unlocked {
			unlockedCount++
		}
	}

	summary := &achievement.Summary{
		Total:      len(all),
		Unlocked:   unlockedCount,
		Percentage: achievement.ProgressPercent(unlockedCount, len(all)),
		Recent:     []achievement.WithStatus{},
	}
	for _, id := range recentRows {
		if a, ok := byID[id]; ok {
			summary.Recent = append(summary.Recent, a)
		}
	}
	return summary, nil
}

func (s *AchievementService) unlockedIDs(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `SELECT achievement_id FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		unlocked[id] = true
	}
	return unlocked, rows.Err()
}

func (s *AchievementService) recentUnlocks(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	query := `
	SELECT achievement_id, unlocked_at
	FROM user_achievements
	WHERE user_id = $1
	ORDER BY unlocked_at DESC
	LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent achievements: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("failed to scan recent achievement: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *AchievementService) notifyUnlocks(ctx context.Context, userID uuid.UUID, newly []achievement.Definition) {
	if s.fcm == nil {
		return
	}

	tokens, err := s.deviceTokens(ctx, userID)
	if err != nil {
		log.Printf("failed to load device tokens for %s: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	for _, def := range newly {
		err := s.fcm.SendPush(ctx, tokens, "Nový úspěch! "+def.Icon, def.Name, map[string]string{
			"type":           "achievement_unlocked",
			"achievement_id": def.ID,
		})
		if err != nil {
			log.Printf("failed to push achievement %s to %s: %v", def.ID, userID, err)
		}
	}
}

func (s *AchievementService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
