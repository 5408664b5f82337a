package model

// User is the root of the containment hierarchy. The platform's own user ID
// is already stable, so users carry no surrogate key.
type User struct {
	UserID  string `json:"userId"`
	Created string `json:"created"`
}
