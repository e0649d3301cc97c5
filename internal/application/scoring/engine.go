package scoring

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

// Rubric category names, used as Breakdown keys and in stored breakdowns.
const (
	CategoryRole           = "role"
	CategoryShareChannels  = "share_channels"
	CategoryLearnChannels  = "learn_channels"
	CategoryBuyFrequency   = "buy_frequency"
	CategoryShareFrequency = "share_frequency"
	CategoryLocation       = "location_bonus"
	CategoryInviteCode     = "invite_code_bonus"
	CategoryProfile        = "profile_bonus"
	CategoryEquipment      = "equipment_bonus"
)

// Answers is everything an applicant tells us, plus the optional signals the
// submit handler attaches from their profile.
type Answers struct {
	Role             string   `json:"role"`
	ShareChannels    []string `json:"share_channels"`
	LearnChannels    []string `json:"learn_channels"`
	BuyFrequency     string   `json:"buy_frequency"`
	ShareFrequency   string   `json:"share_frequency"`
	SpendBracket     string   `json:"spend_bracket"`
	CityRegion       string   `json:"city_region"`
	InviteCode       string   `json:"invite_code"`
	ProfileComplete  bool     `json:"profile_complete"`
	EquipmentEngaged bool     `json:"equipment_engaged"`
}

// Breakdown is the scoring result: per-category points, their sum, and the
// sum clamped to the rubric's total cap. Recomputable byte-for-byte from the
// same Answers + Config.
type Breakdown struct {
	Categories  map[string]int `json:"categories"`
	Total       int            `json:"total"`
	CappedTotal int            `json:"cappedTotal"`
}

// Score applies the rubric to an applicant's answers. Pure and deterministic:
// no I/O, no clock, identical output for identical input. Unknown or missing
// answers contribute 0 and are never an error.
func Score(a Answers, cfg Config) Breakdown {
	cats := map[string]int{
		CategoryRole:           rolePoints(a.Role, cfg.Weights.Role),
		CategoryShareChannels:  listPoints(a.ShareChannels, cfg.Weights.ShareChannels),
		CategoryLearnChannels:  listPoints(a.LearnChannels, cfg.Weights.LearnChannels),
		CategoryBuyFrequency:   lookupPoints(a.BuyFrequency, cfg.Weights.BuyFrequency),
		CategoryShareFrequency: lookupPoints(a.ShareFrequency, cfg.Weights.ShareFrequency),
		CategoryLocation:       locationPoints(a.CityRegion, cfg.Weights),
		CategoryInviteCode:     0,
		CategoryProfile:        0,
		CategoryEquipment:      0,
	}
	if strings.TrimSpace(a.InviteCode) != "" {
		cats[CategoryInviteCode] = cfg.Weights.InviteCodeBonus
	}
	if a.ProfileComplete {
		cats[CategoryProfile] = cfg.Weights.ProfileBonus
	}
	if a.EquipmentEngaged {
		cats[CategoryEquipment] = cfg.Weights.EquipmentBonus
	}

	total := 0
	for _, pts := range cats {
		total += pts
	}
	capped := total
	if capped > cfg.Weights.TotalCap {
		capped = cfg.Weights.TotalCap
	}
	return Breakdown{Categories: cats, Total: total, CappedTotal: capped}
}

func rolePoints(role string, weights map[string]int) int {
	key := Normalize(role)
	if key == "" {
		return 0
	}
	pts, ok := weights[key]
	if !ok {
		// Data-quality signal, not an error: unrecognized roles score 0.
		log.Debug().Str("role", truncate(role, 64)).Msg("scoring: unrecognized role")
		return 0
	}
	return pts
}

func lookupPoints(answer string, weights map[string]int) int {
	return weights[Normalize(answer)]
}

func listPoints(selected []string, lw ListWeights) int {
	sum := 0
	seen := make(map[string]bool)
	for _, item := range selected {
		key := Normalize(item)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		sum += lw.Items[key]
	}
	if sum > lw.Cap {
		return lw.Cap
	}
	return sum
}

func locationPoints(cityRegion string, w Weights) int {
	norm := Normalize(cityRegion)
	if norm == "" {
		return 0
	}
	for _, keyword := range w.LocationKeywords {
		if strings.Contains(norm, Normalize(keyword)) {
			return w.LocationBonus
		}
	}
	return 0
}

// Normalize lowercases, strips punctuation and collapses whitespace so
// free-text answers match rubric keys regardless of formatting.
func Normalize(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r), r == '-', r == '/':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
