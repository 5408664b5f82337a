package request

// CreateUserRequest represents the request body for registering a user.
// UserID is the external platform identifier and is required.
type CreateUserRequest struct {
	UserID string `json:"userId"`
}
