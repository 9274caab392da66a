// Package api holds the request/response shapes shared by every HTTP handler.
package api

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// CountResponse is one row of a group-by summary.
type CountResponse struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}
