package users

import (
	"strings"
	"time"
)

// User is an account with its editable profile.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	MobileNumber string
	Company      string
	JobTitle     string
	Location     string
	Bio          string
	LinkedInURL  string
	GitHubURL    string
	WebsiteURL   string
	// ProfilePhoto is an object store key or an external http(s) URL.
	ProfilePhoto string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasExternalPhoto reports whether the photo points at another host.
func (u User) HasExternalPhoto() bool {
	p := strings.ToLower(u.ProfilePhoto)
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// HasStoredPhoto reports whether the photo lives in the object store.
func (u User) HasStoredPhoto() bool {
	return u.ProfilePhoto != "" && !u.HasExternalPhoto()
}

// PhotoURL is the client-facing photo link, or nil when there is none.
func (u User) PhotoURL() *string {
	switch {
	case u.HasStoredPhoto():
		url := "/profile-photo/" + u.ID
		return &url
	case u.HasExternalPhoto():
		url := u.ProfilePhoto
		return &url
	default:
		return nil
	}
}

// DisplayName joins first and last name, falling back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Email
	}
	return name
}

// View is the JSON shape of a user.
type View struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	MobileNumber string    `json:"mobile_number"`
	Company      string    `json:"company"`
	JobTitle     string    `json:"job_title"`
	Location     string    `json:"location"`
	Bio          string    `json:"bio"`
	LinkedInURL  string    `json:"linkedin_url"`
	GitHubURL    string    `json:"github_url"`
	WebsiteURL   string    `json:"website_url"`
	ProfilePhoto *string   `json:"profile_photo"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) View() View {
	return View{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		MobileNumber: u.MobileNumber,
		Company:      u.Company,
		JobTitle:     u.JobTitle,
		Location:     u.Location,
		Bio:          u.Bio,
		LinkedInURL:  u.LinkedInURL,
		GitHubURL:    u.GitHubURL,
		WebsiteURL:   u.WebsiteURL,
		ProfilePhoto: u.PhotoURL(),
		UpdatedAt:    u.UpdatedAt,
	}
}

// ProfilePatch carries optional profile edits. Nil fields are left alone.
type ProfilePatch struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	MobileNumber *string `json:"mobile_number"`
	Company      *string `json:"company"`
	JobTitle     *string `json:"job_title"`
	Location     *string `json:"location"`
	Bio          *string `json:"bio"`
}

// SocialPatch carries optional social link edits.
type SocialPatch struct {
	LinkedInURL *string `json:"linkedin_url"`
	GitHubURL   *string `json:"github_url"`
	WebsiteURL  *string `json:"website_url"`
}

// OAuthProfile is the identity returned by an OAuth provider.
type OAuthProfile struct {
	Email     string
	FirstName string
	LastName  string
	Picture   string
}
