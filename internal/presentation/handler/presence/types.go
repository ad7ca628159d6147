package presence

type onlineListResponse struct {
	Users []string `json:"users"`
}

type userPresenceResponse struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}
