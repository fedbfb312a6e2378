package entity

// User is the aggregate stored by a UserStore, keyed by Email.Address().
type User struct {
	Email       Email
	Password    Password
	Requires2FA bool
}

// NewUser builds a User from already-validated parts.
func NewUser(email Email, password Password, requires2FA bool) User {
	return User{
		Email:       email,
		Password:    password,
		Requires2FA: requires2FA,
	}
}
