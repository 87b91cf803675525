// Package eval ranks best-5-of-N poker hands.
package eval

import (
	"fmt"
	"sort"

	"github.com/hackur/holdemd/internal/deck"
)

// Category is the hand rank category, ordered weakest to strongest.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable hand description
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// Result is a ranked hand: the category, an ordered tiebreak sequence, and
// the five cards that make the hand. Comparison is lexicographic: category
// first, then tiebreaks in order.
type Result struct {
	Category  Category    `json:"category"`
	Tiebreaks []int       `json:"tiebreaks"`
	Cards     []deck.Card `json:"cards"`
}

// Compare returns 1 if a beats b, -1 if b beats a, and 0 for an exact tie.
func Compare(a, b Result) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}
	for i := 0; i < len(a.Tiebreaks) && i < len(b.Tiebreaks); i++ {
		if a.Tiebreaks[i] != b.Tiebreaks[i] {
			if a.Tiebreaks[i] > b.Tiebreaks[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Evaluate ranks the best 5-card hand from 5 to 7 cards. For more than 5
// cards every 5-card combination is evaluated and the maximum kept.
func Evaluate(cards []deck.Card) (Result, error) {
	switch {
	case len(cards) == 5:
		return evaluate5(cards), nil
	case len(cards) == 6 || len(cards) == 7:
		var best Result
		first := true
		combo := make([]deck.Card, 5)
		forEachCombination(cards, combo, 0, 0, func() {
			r := evaluate5(combo)
			if first || Compare(r, best) > 0 {
				best = r
				first = false
			}
		})
		return best, nil
	default:
		return Result{}, fmt.Errorf("evaluate requires 5 to 7 cards, got %d", len(cards))
	}
}

// forEachCombination fills combo with each 5-card selection of cards and
// invokes fn for each.
func forEachCombination(cards, combo []deck.Card, start, depth int, fn func()) {
	if depth == len(combo) {
		fn()
		return
	}
	for i := start; i <= len(cards)-(len(combo)-depth); i++ {
		combo[depth] = cards[i]
		forEachCombination(cards, combo, i+1, depth+1, fn)
	}
}

func evaluate5(cards []deck.Card) Result {
	hand := make([]deck.Card, 5)
	copy(hand, cards)
	sort.Slice(hand, func(i, j int) bool {
		if hand[i].Rank != hand[j].Rank {
			return hand[i].Rank > hand[j].Rank
		}
		return hand[i].Suit < hand[j].Suit
	})

	flush := true
	for i := 1; i < 5; i++ {
		if hand[i].Suit != hand[0].Suit {
			flush = false
			break
		}
	}

	straightHigh := straightHighRank(hand)

	if flush && straightHigh > 0 {
		if straightHigh == int(deck.Ace) {
			return Result{Category: RoyalFlush, Tiebreaks: []int{straightHigh}, Cards: hand}
		}
		return Result{Category: StraightFlush, Tiebreaks: []int{straightHigh}, Cards: hand}
	}

	// Count ranks, grouped by multiplicity then rank so that e.g. the pair
	// rank sorts before kickers.
	type group struct {
		rank  int
		count int
	}
	counts := map[int]int{}
	for _, c := range hand {
		counts[int(c.Rank)]++
	}
	groups := make([]group, 0, 5)
	for rank, count := range counts {
		groups = append(groups, group{rank: rank, count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	tiebreaks := make([]int, 0, 5)
	for _, g := range groups {
		tiebreaks = append(tiebreaks, g.rank)
	}

	switch {
	case groups[0].count == 4:
		return Result{Category: FourOfAKind, Tiebreaks: tiebreaks, Cards: hand}
	case groups[0].count == 3 && groups[1].count == 2:
		return Result{Category: FullHouse, Tiebreaks: tiebreaks, Cards: hand}
	case flush:
		return Result{Category: Flush, Tiebreaks: tiebreaks, Cards: hand}
	case straightHigh > 0:
		return Result{Category: Straight, Tiebreaks: []int{straightHigh}, Cards: hand}
	case groups[0].count == 3:
		return Result{Category: ThreeOfAKind, Tiebreaks: tiebreaks, Cards: hand}
	case groups[0].count == 2 && groups[1].count == 2:
		return Result{Category: TwoPair, Tiebreaks: tiebreaks, Cards: hand}
	case groups[0].count == 2:
		return Result{Category: Pair, Tiebreaks: tiebreaks, Cards: hand}
	default:
		return Result{Category: HighCard, Tiebreaks: tiebreaks, Cards: hand}
	}
}

// straightHighRank returns the high rank of a straight formed by the five
// cards (sorted descending), or 0. The wheel A-2-3-4-5 ranks as 5-high.
func straightHighRank(sorted []deck.Card) int {
	distinct := true
	for i := 1; i < 5; i++ {
		if sorted[i].Rank == sorted[i-1].Rank {
			distinct = false
			break
		}
	}
	if !distinct {
		return 0
	}

	if sorted[0].Rank-sorted[4].Rank == 4 {
		return int(sorted[0].Rank)
	}

	// Wheel: A-5-4-3-2 when sorted ace-high.
	if sorted[0].Rank == deck.Ace &&
		sorted[1].Rank == deck.Five &&
		sorted[2].Rank == deck.Four &&
		sorted[3].Rank == deck.Three &&
		sorted[4].Rank == deck.Two {
		return int(deck.Five)
	}

	return 0
}
