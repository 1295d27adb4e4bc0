package leaderboard

import "github.com/google/uuid"

type LeaderboardEntry struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	UserName    string    `json:"user_name" db:"user_name"`
	TotalBeers  int       `json:"total_beers" db:"total_beers"`
	TotalVolume int       `json:"total_volume" db:"total_volume"`
	Rank        int       `json:"rank" db:"rank"`
}

type Leaderboard struct {
	GroupID      uuid.UUID           `json:"group_id"`
	Period       string              `json:"period"`
	Entries      []*LeaderboardEntry `json:"entries"`
	UserPosition *LeaderboardEntry   `json:"user_position"`
	TotalMembers int                 `json:"total_members"`
}
