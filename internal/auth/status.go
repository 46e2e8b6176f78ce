package auth

// Status is the visitor's session state as served by GET /user.
type Status struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	URL        string `json:"url"` // login URL when logged out, logout URL when logged in
}
