package rewards

import (
	"time"

	"github.com/gokatarajesh/coupsurcoup/internal/config"
)

// Rules holds configurable scoring and coin constants (defaults match the game rules).
type Rules struct {
	BaseScore          int     // default: 100
	MaxTimeBonus       int     // default: 50
	StreakBonusPercent float64 // default: 0.05 (5% per consecutive correct, cap +50%)
	MaxStreakBonus     float64 // default: 0.50

	CorrectCoins   int // default: 100
	WrongPenalty   int // default: 75
	TimeoutPenalty int // default: 50
	DuelBonus      int // default: 150
	WinnerBonus    int // default: 500
	LevelUpBonus   int // default: 50
	XPPerCorrect   int // default: 20
	XPPerLevel     int // default: 100
}

// DefaultRules returns production defaults.
func DefaultRules() Rules {
	return Rules{
		BaseScore:          100,
		MaxTimeBonus:       50,
		StreakBonusPercent: 0.05,
		MaxStreakBonus:     0.50,
		CorrectCoins:       100,
		WrongPenalty:       75,
		TimeoutPenalty:     50,
		DuelBonus:          150,
		WinnerBonus:        500,
		LevelUpBonus:       50,
		XPPerCorrect:       20,
		XPPerLevel:         100,
	}
}

// FromConfig overlays the env-driven coin/XP values on the defaults.
func FromConfig(cfg config.Rewards) Rules {
	r := DefaultRules()
	r.CorrectCoins = cfg.CorrectCoins
	r.WrongPenalty = cfg.WrongPenalty
	r.TimeoutPenalty = cfg.TimeoutPenalty
	r.DuelBonus = cfg.DuelBonus
	r.WinnerBonus = cfg.WinnerBonus
	r.LevelUpBonus = cfg.LevelUpBonus
	r.XPPerCorrect = cfg.XPPerCorrect
	if cfg.XPPerLevel > 0 {
		r.XPPerLevel = cfg.XPPerLevel
	}
	return r
}

// Engine computes server-side points, coins and levels.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	if rules.XPPerLevel <= 0 {
		rules.XPPerLevel = DefaultRules().XPPerLevel
	}
	return &Engine{rules: rules}
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// Points computes the score for a single correct answer.
// Formula: base + time_bonus + streak_bonus
// - time_bonus: max when answered instantly, decays linearly to 0 at timeout
// - streak_bonus: percentage of base per consecutive correct answer, capped
func (e *Engine) Points(remaining, turn time.Duration, streak int) int {
	score := e.rules.BaseScore

	if turn > 0 {
		ratio := float64(remaining) / float64(turn)
		if ratio > 1.0 {
			ratio = 1.0
		}
		if ratio < 0.0 {
			ratio = 0.0
		}
		score += int(float64(e.rules.MaxTimeBonus) * ratio)
	}

	if streak > 0 {
		mult := float64(streak) * e.rules.StreakBonusPercent
		if mult > e.rules.MaxStreakBonus {
			mult = e.rules.MaxStreakBonus
		}
		score += int(float64(e.rules.BaseScore) * mult)
	}

	return score
}

// LevelFor returns floor(xp / XPPerLevel) + 1.
func (e *Engine) LevelFor(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/e.rules.XPPerLevel + 1
}

// LevelUpCoins is the bonus owed when experience moves from oldXP to newXP.
func (e *Engine) LevelUpCoins(oldXP, newXP int) (levels, coins int) {
	levels = e.LevelFor(newXP) - e.LevelFor(oldXP)
	if levels <= 0 {
		return 0, 0
	}
	return levels, levels * e.rules.LevelUpBonus
}
