package memory

import "github.com/riskibarqy/weekly-lotto/internal/domain/player"

// SeedPlayers is the player roster used when the service runs without a database.
func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: 1, Name: "Anders Jensen", IsActive: true},
		{ID: 2, Name: "Mette Nielsen", IsActive: true},
		{ID: 3, Name: "Lars Hansen", IsActive: true},
		{ID: 4, Name: "Sofie Pedersen", IsActive: false},
	}
}
