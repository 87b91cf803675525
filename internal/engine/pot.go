package engine

import "sort"

// Pot is a main or side pot with the seats eligible to win it.
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

// buildPots partitions every chip wagered this hand into pots. Contribution
// caps exist only at the commitment levels of non-folded all-in seats plus
// the highest live commitment; walking those levels ascending, each pot
// captures the slice of every player's total bet between the previous level
// and that level, with eligibility restricted to non-folded seats committed
// at or beyond it. Folded money below a level is swept into that level's
// pot. The pots always sum exactly to the total wagered.
func buildPots(players []*Player) []Pot {
	levelSet := map[int]bool{}
	total := 0
	maxLive := 0
	for _, p := range players {
		total += p.TotalBet
		if p.Folded || p.TotalBet == 0 {
			continue
		}
		if p.AllIn {
			levelSet[p.TotalBet] = true
		}
		if p.TotalBet > maxLive {
			maxLive = p.TotalBet
		}
	}
	if maxLive > 0 {
		levelSet[maxLive] = true
	}

	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	var pots []Pot
	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for _, p := range players {
			contribution := min(p.TotalBet, level) - min(p.TotalBet, prev)
			pot.Amount += contribution
			if !p.Folded && p.TotalBet >= level {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
		prev = level
	}

	// A seat that folded after committing beyond the highest live level
	// leaves chips above every pot boundary; sweep them into the last pot.
	if leftover := total - potTotal(pots); leftover > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += leftover
	}

	return pots
}

// potTotal returns the sum of all pot amounts.
func potTotal(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}
