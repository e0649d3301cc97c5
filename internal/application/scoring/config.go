package scoring

// ListWeights scores a multi-select answer: each selected item is worth its
// entry in Items, and the category sum is clamped to Cap no matter how many
// items were selected.
type ListWeights struct {
	Items map[string]int `json:"items"`
	Cap   int            `json:"cap"`
}

// Weights is the rubric: per-category points and caps.
type Weights struct {
	Role             map[string]int `json:"role"`
	ShareChannels    ListWeights    `json:"share_channels"`
	LearnChannels    ListWeights    `json:"learn_channels"`
	BuyFrequency     map[string]int `json:"buy_frequency"`
	ShareFrequency   map[string]int `json:"share_frequency"`
	LocationBonus    int            `json:"location_bonus"`
	LocationKeywords []string       `json:"location_keywords"`
	InviteCodeBonus  int            `json:"invite_code_bonus"`
	ProfileBonus     int            `json:"profile_bonus"`
	EquipmentBonus   int            `json:"equipment_bonus"`
	TotalCap         int            `json:"total_cap"`
}

// Config is an immutable rubric snapshot. Every decision records the Version
// it was scored under so rubric tuning never rewrites history.
type Config struct {
	Version              string  `json:"version"`
	Weights              Weights `json:"weights"`
	AutoApproveThreshold int     `json:"auto_approve_threshold"`
	// CapacityBuffer holds back this many slots below the raw cap when
	// auto-approving, to absorb concurrent high-score bursts.
	CapacityBuffer int `json:"capacity_buffer"`
}

// Default returns the production "v1" rubric.
func Default() Config {
	return Config{
		Version: "v1",
		Weights: Weights{
			Role: map[string]int{
				"fitter_builder": 3,
				"creator":        2,
				"league_captain": 1,
				"golfer":         0,
				"retailer_other": 0,
			},
			ShareChannels: ListWeights{
				Items: map[string]int{
					"reddit":    1,
					"golfwrx":   1,
					"instagram": 1,
					"youtube":   1,
					"tiktok":    1,
					"friends":   1,
				},
				Cap: 2,
			},
			LearnChannels: ListWeights{
				Items: map[string]int{
					"youtube":  1,
					"reddit":   1,
					"golfwrx":  1,
					"fitters":  1,
					"podcasts": 1,
				},
				Cap: 1,
			},
			BuyFrequency: map[string]int{
				"never":        0,
				"yearly_1_2":   0,
				"few_per_year": 1,
				"monthly":      2,
				"weekly_plus":  2,
			},
			ShareFrequency: map[string]int{
				"never":       0,
				"sometimes":   1,
				"weekly_plus": 2,
				"daily_plus":  2,
			},
			LocationBonus: 1,
			LocationKeywords: []string{
				"scottsdale",
				"phoenix",
				"dallas",
				"houston",
				"orlando",
				"jacksonville",
				"san diego",
				"palm springs",
				"naples",
				"hilton head",
			},
			InviteCodeBonus: 1,
			ProfileBonus:    1,
			EquipmentBonus:  1,
			TotalCap:        10,
		},
		AutoApproveThreshold: 4,
		CapacityBuffer:       0,
	}
}
