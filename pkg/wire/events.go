package wire

// Inbound events (client → relay).
const (
	EventJoinUserRoom     = "join-user-room"
	EventJoinAdminRoom    = "join-admin-room"
	EventSendAdminMessage = "send-admin-message"
	EventSendChatMessage  = "send-chat-message"
	EventSendNotification = "send-notification"
	EventGetOnlineUsers   = "get-online-users"
)

// Outbound events (relay → client).
const (
	EventAdminMessage       = "admin-message"
	EventReceiveChatMessage = "receive-chat-message"
	EventNotification       = "notification"
	EventUserConnected      = "user-connected"
	EventUserDisconnected   = "user-disconnected"
	EventOnlineUsersList    = "online-users-list"
	EventSessionSuperseded  = "session-superseded"
	EventError              = "error"
)

// BroadcastUserID targets every connected client instead of one user room.
const BroadcastUserID = "all"
