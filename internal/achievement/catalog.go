package achievement

import "pivoLogAPI/internal/stats"

func totalBeers(s stats.Snapshot) int      { return s.TotalBeers }
func totalVolume(s stats.Snapshot) int     { return s.TotalVolumeML }
func uniqueBeers(s stats.Snapshot) int     { return s.UniqueBeers }
func uniqueBreweries(s stats.Snapshot) int { return s.UniqueBreweries }
func weekendBeers(s stats.Snapshot) int    { return s.WeekendBeers }
func maxDaily(s stats.Snapshot) int        { return s.MaxDaily }
func consecutiveDays(s stats.Snapshot) int { return s.ConsecutiveDays }
func largeBeers(s stats.Snapshot) int      { return s.LargeBeers }
func smallBeers(s stats.Snapshot) int      { return s.SmallBeers }
func maxLoyal(s stats.Snapshot) int        { return s.MaxLoyal }

func earlyBird(s stats.Snapshot) int {
	if s.EarlyBird {
		return 1
	}
	return 0
}

func nightOwl(s stats.Snapshot) int {
	if s.NightOwl {
		return 1
	}
	return 0
}

// catalog is the full achievement table. Order matters: list endpoints and
// Evaluate emit entries in this order. New achievements are added here,
// nowhere else.
var catalog = []Definition{
	{ID: "first_beer", Name: "První doušek", Description: "Zaznamenej své první pivo", Icon: "🍼",
		Category: CategoryMilestones, Kind: KindOneTime, metric: totalBeers, target: 1},
	{ID: "beer_50", Name: "Začátečník", Description: "Vypij 50 piv", Icon: "🔰",
		Category: CategoryMilestones, Kind: KindOneTime, metric: totalBeers, target: 50},
	{ID: "beer_100", Name: "Pokročilý", Description: "Vypij 100 piv", Icon: "⭐",
		Category: CategoryMilestones, Kind: KindOneTime, metric: totalBeers, target: 100},
	{ID: "beer_500", Name: "Pivní veterán", Description: "Vypij 500 piv", Icon: "🎖️",
		Category: CategoryMilestones, Kind: KindOneTime, metric: totalBeers, target: 500},
	{ID: "beer_1000", Name: "Pivní legenda", Description: "Vypij 1000 piv", Icon: "👑",
		Category: CategoryMilestones, Kind: KindOneTime, metric: totalBeers, target: 1000},

	{ID: "volume_10l", Name: "Dekalitrovka", Description: "Vypij celkem 10 litrů", Icon: "🪣",
		Category: CategoryVolume, Kind: KindOneTime, metric: totalVolume, target: 10000, displayScale: 1000},
	{ID: "volume_50l", Name: "Sud", Description: "Vypij celkem 50 litrů (jeden sud)", Icon: "🛢️",
		Category: CategoryVolume, Kind: KindOneTime, metric: totalVolume, target: 50000, displayScale: 1000},
	{ID: "volume_100l", Name: "Hektolitr", Description: "Vypij celkem 100 litrů", Icon: "🏊",
		Category: CategoryVolume, Kind: KindOneTime, metric: totalVolume, target: 100000, displayScale: 1000},

	{ID: "variety_5", Name: "Ochutnávač", Description: "Vyzkoušej 5 různých piv", Icon: "🔍",
		Category: CategoryVariety, Kind: KindOneTime, metric: uniqueBeers, target: 5},
	{ID: "variety_10", Name: "Pivní znalec", Description: "Vyzkoušej 10 různých piv", Icon: "🎓",
		Category: CategoryVariety, Kind: KindOneTime, metric: uniqueBeers, target: 10},
	{ID: "variety_25", Name: "Pivní sommeliér", Description: "Vyzkoušej 25 různých piv", Icon: "🏆",
		Category: CategoryVariety, Kind: KindOneTime, metric: uniqueBeers, target: 25},
	{ID: "breweries_5", Name: "Turista", Description: "Ochutnej piva z 5 různých pivovarů", Icon: "🗺️",
		Category: CategoryVariety, Kind: KindOneTime, metric: uniqueBreweries, target: 5},

	{ID: "early_bird", Name: "Ranní ptáče", Description: "Vypij pivo před 10:00", Icon: "🌅",
		Category: CategoryTime, Kind: KindOneTime, metric: earlyBird, target: 1},
	{ID: "night_owl", Name: "Noční sova", Description: "Vypij pivo po půlnoci", Icon: "🦉",
		Category: CategoryTime, Kind: KindOneTime, metric: nightOwl, target: 1},
	{ID: "weekend_warrior", Name: "Víkendový válečník", Description: "Vypij 10 piv během víkendů", Icon: "⚔️",
		Category: CategoryTime, Kind: KindOneTime, metric: weekendBeers, target: 10},

	{ID: "marathon", Name: "Maratonec", Description: "Vypij 5 piv za jeden den", Icon: "🏃",
		Category: CategoryPerformance, Kind: KindOneTime, metric: maxDaily, target: 5},
	{ID: "ultra_marathon", Name: "Ultra maratonec", Description: "Vypij 10 piv za jeden den", Icon: "🦸",
		Category: CategoryPerformance, Kind: KindOneTime, metric: maxDaily, target: 10},
	{ID: "weekly_streak", Name: "Týdenní série", Description: "Pij pivo každý den celý týden", Icon: "🔥",
		Category: CategoryPerformance, Kind: KindOneTime, metric: consecutiveDays, target: 7},

	{ID: "size_matters", Name: "Na velikosti záleží", Description: "Vypij 10 velkých piv (0.5l)", Icon: "📏",
		Category: CategorySpecial, Kind: KindOneTime, metric: largeBeers, target: 10},
	{ID: "small_but_mighty", Name: "Malý, ale šikovný", Description: "Vypij 10 malých piv (0.3l)", Icon: "🐜",
		Category: CategorySpecial, Kind: KindOneTime, metric: smallBeers, target: 10},
	{ID: "loyal_fan", Name: "Věrný fanoušek", Description: "Vypij 10 piv stejné značky", Icon: "💕",
		Category: CategorySpecial, Kind: KindOneTime, metric: maxLoyal, target: 10},
}

var byID = func() map[string]Definition {
	m := make(map[string]Definition, len(catalog))
	for _, def := range catalog {
		m[def.ID] = def
	}
	return m
}()

// Catalog returns the full definition table in display order.
func Catalog() []Definition {
	return catalog
}

// Find looks up a definition by id. Unknown ids return ok=false; callers
// treat those as locked with progress 0/1.
func Find(id string) (Definition, bool) {
	def, ok := byID[id]
	return def, ok
}
