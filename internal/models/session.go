package models

// Session is the authenticated team identity held by the client. Created on
// login/signup, destroyed on logout or a 401 response.
type Session struct {
	TeamName string `json:"teamName"`
	Token    string `json:"token"`
}
