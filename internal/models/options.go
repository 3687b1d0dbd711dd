package models

// UserOption configures a User before it is saved.
type UserOption func(*User)

func WithUsername(username string) UserOption {
	return func(u *User) { u.Username = username }
}

func WithEmail(email string) UserOption {
	return func(u *User) { u.Email = email }
}

func WithFirstName(name string) UserOption {
	return func(u *User) { u.FirstName = name }
}

func WithLastName(name string) UserOption {
	return func(u *User) { u.LastName = name }
}

func WithBio(bio string) UserOption {
	return func(u *User) { u.Bio = bio }
}

func WithRole(role string) UserOption {
	return func(u *User) { u.Role = role }
}

func WithIsActive(active bool) UserOption {
	return func(u *User) { u.IsActive = active }
}
