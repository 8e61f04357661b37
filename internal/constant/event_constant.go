package constant

const (
	EventTurnRecorded = "chat.turn_recorded"
)
