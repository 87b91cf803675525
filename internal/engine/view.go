package engine

import "github.com/hackur/holdemd/internal/deck"

// PlayerPublic is the publicly visible state of one seat. Hole cards appear
// only for the viewing player, or for every live seat once the hand reaches
// showdown.
type PlayerPublic struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Seat      int         `json:"seat"`
	Chips     int         `json:"chips"`
	Bet       int         `json:"bet"`
	Folded    bool        `json:"folded"`
	AllIn     bool        `json:"all_in"`
	HasCards  bool        `json:"has_cards"`
	HoleCards []deck.Card `json:"hole_cards,omitempty"`
}

// View is the sanitized per-player read model of a game.
type View struct {
	GameID       string         `json:"game_id"`
	HandNum      int            `json:"hand_num"`
	Phase        string         `json:"phase"`
	Players      []PlayerPublic `json:"players"`
	Community    []deck.Card    `json:"community"`
	Pots         []Pot          `json:"pots"`
	CurrentBet   int            `json:"current_bet"`
	MinRaise     int            `json:"min_raise"`
	SmallBlind   int            `json:"small_blind"`
	BigBlind     int            `json:"big_blind"`
	Button       int            `json:"button"`
	Active       int            `json:"active"`
	YourSeat     int            `json:"your_seat"`
	HoleCards    []deck.Card    `json:"hole_cards,omitempty"`
	ValidActions []ActionOption `json:"valid_actions,omitempty"`
	Winners      []Winner       `json:"winners,omitempty"`
}

// ViewFor builds the sanitized view for the identified player. Unknown ids
// get a spectator view with no hole cards.
func (g *Game) ViewFor(playerID string) View {
	yourSeat := -1
	for _, p := range g.Players {
		if p.ID == playerID {
			yourSeat = p.Seat
			break
		}
	}

	v := View{
		GameID:     g.ID,
		HandNum:    g.HandNum,
		Phase:      g.Phase.String(),
		Community:  g.Community,
		Pots:       g.LivePots(),
		CurrentBet: g.CurrentBet,
		MinRaise:   g.MinRaise,
		SmallBlind: g.SmallBlind,
		BigBlind:   g.BigBlind,
		Button:     g.Button,
		Active:     g.Active,
		YourSeat:   yourSeat,
	}

	for _, p := range g.Players {
		pub := PlayerPublic{
			ID:       p.ID,
			Name:     p.Name,
			Seat:     p.Seat,
			Chips:    p.Chips,
			Bet:      p.Bet,
			Folded:   p.Folded,
			AllIn:    p.AllIn,
			HasCards: p.HasCards(),
		}
		if p.Seat == yourSeat || (g.Phase == Showdown && p.HasCards()) {
			pub.HoleCards = p.HoleCards
		}
		v.Players = append(v.Players, pub)
	}

	if yourSeat >= 0 {
		v.HoleCards = g.Players[yourSeat].HoleCards
		v.ValidActions = g.ValidActions(yourSeat)
	}
	if g.Phase == Showdown {
		v.Winners = g.Winners
	}
	return v
}

// ToCall returns the amount the viewing player must add to match the bet.
func (v View) ToCall() int {
	if v.YourSeat < 0 || v.YourSeat >= len(v.Players) {
		return 0
	}
	toCall := v.CurrentBet - v.Players[v.YourSeat].Bet
	if toCall < 0 {
		return 0
	}
	return toCall
}

// PotTotal returns the total chips across all pots in the view.
func (v View) PotTotal() int {
	return potTotal(v.Pots)
}

// LiveOpponents counts non-folded seats other than the viewer.
func (v View) LiveOpponents() int {
	n := 0
	for _, p := range v.Players {
		if p.Seat != v.YourSeat && !p.Folded && p.HasCards {
			n++
		}
	}
	return n
}
