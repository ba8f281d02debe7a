package game

import (
	"github.com/gokatarajesh/coupsurcoup/internal/game/tracker"
)

// Challenges is the catalog of claimable objectives.
var Challenges = []tracker.Challenge{
	{
		ID:     "first_blood",
		Title:  "Answer a question correctly",
		Reward: 50,
		Done:   func(p tracker.Player) bool { return p.CorrectAnswers >= 1 },
	},
	{
		ID:     "hot_streak",
		Title:  "Answer three questions in a row",
		Reward: 100,
		Done:   func(p tracker.Player) bool { return p.BestStreak >= 3 },
	},
	{
		ID:     "sharp_mind",
		Title:  "Answer ten questions correctly",
		Reward: 200,
		Done:   func(p tracker.Player) bool { return p.CorrectAnswers >= 10 },
	},
	{
		ID:     "duelist",
		Title:  "Win a duel",
		Reward: 150,
		Done:   func(p tracker.Player) bool { return p.DuelsWon >= 1 },
	},
	{
		ID:     "finalist",
		Title:  "Reach the chrono final",
		Reward: 100,
		Done:   func(p tracker.Player) bool { return p.HasBadge(tracker.BadgeSurvivor) },
	},
	{
		ID:     "trap_dodger",
		Title:  "Clear a trap list without falling for it",
		Reward: 75,
		Done:   func(p tracker.Player) bool { return p.HasBadge(tracker.BadgeTrapDodger) },
	},
}

// ChallengeByID looks a challenge up in the catalog.
func ChallengeByID(id string) (tracker.Challenge, bool) {
	for _, c := range Challenges {
		if c.ID == id {
			return c, true
		}
	}
	return tracker.Challenge{}, false
}
