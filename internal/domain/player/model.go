package player

// Player is the slice of a player record this service reads.
type Player struct {
	ID       int64
	Name     string
	IsActive bool
}
