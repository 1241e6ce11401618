// ABOUTME: User domain model and the authentication request bodies
// ABOUTME: Passwords only travel outbound; the backend never returns them

package domain

// User is the public profile of an author
type User struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// RegisterRequest is the body of the registration call
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// LoginRequest is the body of the login call
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}
