// Package identity carries the resolved caller identity through the service
// layer. Workflow operations take it as an explicit parameter; nothing below
// the handlers reads auth state from ambient request context.
package identity

// Identity is the authenticated caller as resolved from the bearer token.
type Identity struct {
	UserID    int64
	CompanyID int64
	IsAdmin   bool
}
