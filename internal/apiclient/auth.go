package apiclient

import (
	"context"

	"github.com/stemsi/qprep-client/internal/model"
)

// SendOTP asks the backend to text a login code.
func (c *Client) SendOTP(ctx context.Context, req model.SendOTPRequest) error {
	return c.post(ctx, "/auth/send-otp", req, nil)
}

// VerifyOTP exchanges a login code for a bearer token.
func (c *Client) VerifyOTP(ctx context.Context, req model.VerifyOTPRequest) (*model.VerifyOTPResponse, error) {
	var out model.VerifyOTPResponse
	if err := c.post(ctx, "/auth/verify-otp", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMyProfile returns the authenticated user.
func (c *Client) GetMyProfile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, "/user/get-profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile edits the authenticated user.
func (c *Client) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (*model.User, error) {
	var user model.User
	if err := c.put(ctx, "/user/profile", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
