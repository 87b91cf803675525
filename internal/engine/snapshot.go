package engine

import (
	"encoding/json"
	"fmt"
)

// Snapshot serializes the complete game state. Restoring the snapshot
// yields a game with identical subsequent behavior; no engine field holds a
// resource handle, so the flat form is the persistence contract.
func (g *Game) Snapshot() ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("snapshotting game %s: %w", g.ID, err)
	}
	return data, nil
}

// RestoreGame reconstructs a game from a snapshot.
func RestoreGame(data []byte) (*Game, error) {
	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("restoring game snapshot: %w", err)
	}
	if len(g.Players) == 0 {
		return nil, fmt.Errorf("snapshot contains no players")
	}
	return &g, nil
}
