package game

import "errors"

var (
	ErrRoomNotFound    = errors.New("game code not found")
	ErrRoomClosed      = errors.New("room closed")
	ErrNotEnough       = errors.New("not enough players to continue the game")
	ErrPlayersNotReady = errors.New("all players must be ready")
	ErrNoPrompts       = errors.New("no prompts configured")
)
