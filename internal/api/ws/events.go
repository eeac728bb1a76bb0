package ws

// Inbound event names. Outbound names are emitted inline where they are
// produced; the full contract lives with the handlers in hub.go and the
// room manager's broadcasts.
const (
	EventCreateRoom       = "createRoom"
	EventJoinRoom         = "joinRoom"
	EventJoinAsSpectator  = "joinAsSpectator"
	EventGetRooms         = "getRooms"
	EventMakeMove         = "makeMove"
	EventUndoMove         = "undoMove"
	EventSurrender        = "surrender"
	EventChooseColor      = "chooseColor"
	EventRestartGame      = "restartGame"
	EventRestartWithColor = "restartWithColor"
	EventGetGameRecords   = "getGameRecords"
	EventReconnect        = "reconnectToRoom"
	EventSendMessage      = "sendMessage"
	EventLeaveRoom        = "leaveRoom"
)

type createRoomRequest struct {
	RoomID         string `json:"roomId"`
	PlayerName     string `json:"playerName"`
	PreferredColor string `json:"preferredColor"`
}

type spectateRequest struct {
	RoomID        string `json:"roomId"`
	SpectatorName string `json:"spectatorName"`
}

type moveRequest struct {
	RoomID string `json:"roomId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Player string `json:"player"`
}

type roomRequest struct {
	RoomID string `json:"roomId"`
}

type colorRequest struct {
	RoomID string `json:"roomId"`
	Color  string `json:"color"`
}

type reconnectRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type messageRequest struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}
