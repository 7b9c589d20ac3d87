package domain

import "time"

type User struct {
	Id             UserId
	Username       Username
	Email          Email
	EmailConfirmed bool
	PassHash       string
	DoNotEmail     bool

	// Profile fields
	RealName       string
	Linkedin       string
	Github         string
	Qualifications string

	Created time.Time
}

// PublicProfile is the subset of User safe to show to anyone.
type PublicProfile struct {
	Id             UserId   `json:"id"`
	Username       Username `json:"username"`
	RealName       string   `json:"realName"`
	Linkedin       string   `json:"linkedin"`
	Github         string   `json:"github"`
	Qualifications string   `json:"qualifications"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		Id:             u.Id,
		Username:       u.Username,
		RealName:       u.RealName,
		Linkedin:       u.Linkedin,
		Github:         u.Github,
		Qualifications: u.Qualifications,
	}
}

// OwnProfile adds the fields a user may see about themselves.
type OwnProfile struct {
	PublicProfile
	Email          Email `json:"email"`
	EmailConfirmed bool  `json:"emailConfirmed"`
	DoNotEmail     bool  `json:"doNotEmail"`
}

func (u *User) Own() OwnProfile {
	return OwnProfile{
		PublicProfile:  u.Public(),
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmed,
		DoNotEmail:     u.DoNotEmail,
	}
}

// ConfirmationData holds a pending email confirmation or password reset code.
type ConfirmationData struct {
	Email    Email
	CodeHash string
	Expires  time.Time
}
