package session

import "errors"

// ErrAuthRequired indicates an operation needing an authenticated session was
// invoked without one. It is user-fixable and must stay distinguishable from
// upstream failures.
var ErrAuthRequired = errors.New("authentication required")

// Session is the authenticated principal for cloud store operations.
// The access token is forwarded to the remote store on every call and is
// never persisted by this process.
type Session struct {
	UserID      string
	AccessToken string
}
