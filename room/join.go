package room

// Join announces a player to a room. It is the first event emitted after connecting.
type Join struct {
	Name string `json:"name" jsonschema:"description=Display name of the player"`
	Room string `json:"room" jsonschema:"description=Room to join"`
}
