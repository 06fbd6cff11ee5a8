package identity

import "time"

// Account represents a registered identity. Accounts are never hard-deleted;
// deactivation is terminal.
type Account struct {
	ID           int64
	Email        string
	Username     string
	PhoneNo      string
	ProfilePhoto *string
	FirstName    string
	LastName     string
	DateOfBirth  *time.Time
	IsVerified   bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile captures the caller-supplied account attributes.
type Profile struct {
	Email        string
	Username     string
	PhoneNo      string
	ProfilePhoto *string
	FirstName    string
	LastName     string
	DateOfBirth  *time.Time
	IsVerified   bool
}

// Changes describes an update; nil fields are left untouched.
type Changes struct {
	Email        *string
	Username     *string
	PhoneNo      *string
	ProfilePhoto **string
	FirstName    *string
	LastName     *string
	DateOfBirth  **time.Time
	IsVerified   *bool
}

// View is the output projection of an account.
type View struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PhoneNo      string    `json:"phone_no"`
	ProfilePhoto *string   `json:"profile_photo"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DateOfBirth  *string   `json:"date_of_birth"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToView projects an account onto its fixed output fields. Blank optional
// strings render as "", missing photo and birth date as null.
func ToView(a Account) View {
	v := View{
		ID:         a.ID,
		Email:      a.Email,
		Username:   a.Username,
		PhoneNo:    a.PhoneNo,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if a.ProfilePhoto != nil && *a.ProfilePhoto != "" {
		photo := *a.ProfilePhoto
		v.ProfilePhoto = &photo
	}
	if a.DateOfBirth != nil {
		dob := a.DateOfBirth.Format("2006-01-02")
		v.DateOfBirth = &dob
	}
	return v
}
