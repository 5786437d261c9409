package model

import "strings"

// User is the authenticated learner profile.
type User struct {
	ID         string `json:"_id"`
	Contact    string `json:"contact"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	ProfilePic string `json:"profile_pic,omitempty"`
	Language   string `json:"language,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Address    string `json:"address,omitempty"`
	PlanName   string `json:"planName,omitempty"`
}

// IsFree reports whether the user has no paid plan.
func (u *User) IsFree() bool {
	return u == nil || u.PlanName == "" || strings.EqualFold(u.PlanName, "free")
}

// SendOTPRequest is the payload for requesting a login OTP.
type SendOTPRequest struct {
	MobileNo string `json:"mobile_no" binding:"required,numeric,len=10"`
}

// VerifyOTPRequest is the payload for exchanging an OTP for a token.
type VerifyOTPRequest struct {
	MobileNo string `json:"mobile_no" binding:"required,numeric,len=10"`
	OTP      string `json:"otp" binding:"required,numeric,min=4,max=6"`
}

// VerifyOTPResponse carries the issued bearer token.
type VerifyOTPResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

// UpdateProfileRequest is the payload for editing the profile.
type UpdateProfileRequest struct {
	UserID     string `json:"userId" binding:"required"`
	Name       string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Email      string `json:"email,omitempty" binding:"omitempty,email"`
	Gender     string `json:"gender,omitempty" binding:"omitempty,oneof=male female other"`
	Address    string `json:"address,omitempty" binding:"omitempty,max=255"`
	ProfilePic string `json:"profile_pic,omitempty" binding:"omitempty,url"`
	Language   string `json:"language,omitempty" binding:"omitempty,oneof=en hi mr"`
}

// Apply merges the non-empty request fields into u.
func (r *UpdateProfileRequest) Apply(u *User) {
	if r.Name != "" {
		u.Name = r.Name
	}
	if r.Email != "" {
		u.Email = r.Email
	}
	if r.Gender != "" {
		u.Gender = r.Gender
	}
	if r.Address != "" {
		u.Address = r.Address
	}
	if r.ProfilePic != "" {
		u.ProfilePic = r.ProfilePic
	}
	if r.Language != "" {
		u.Language = r.Language
	}
}
