package apiclient

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/stemsi/qprep-client/internal/model"
)

// UsageDecision answers whether a metered feature may be used now.
type UsageDecision struct {
	Allowed   bool   `json:"allowed"`
	Remaining *int   `json:"remaining,omitempty"`
	Message   string `json:"message,omitempty"`
}

// GetPlans lists plans, optionally narrowed to a category.
func (c *Client) GetPlans(ctx context.Context, categoryID string) ([]model.SubscriptionPlan, error) {
	q := url.Values{}
	if categoryID != "" {
		q.Set("categoryId", categoryID)
	}
	var raw json.RawMessage
	if err := c.get(ctx, "/subscriptions", q, &raw); err != nil {
		return nil, err
	}
	return decodeList[model.SubscriptionPlan](raw, "data", "plans"), nil
}

// GetPaymentKey returns the payment gateway public key.
func (c *Client) GetPaymentKey(ctx context.Context) (*model.PaymentKey, error) {
	var key model.PaymentKey
	if err := c.get(ctx, "/subscriptions/razorpay-key", nil, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// Subscribe activates a plan after payment.
func (c *Client) Subscribe(ctx context.Context, req model.SubscribeRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.post(ctx, "/subscriptions/subscribe", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMySubscription returns the caller's active subscription document.
func (c *Client) GetMySubscription(ctx context.Context) (model.MySubscription, error) {
	var out json.RawMessage
	if err := c.get(ctx, "/subscriptions/me", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateUsage asks whether a metered feature may be used.
func (c *Client) ValidateUsage(ctx context.Context, feature model.UsageFeature) (*UsageDecision, error) {
	var out UsageDecision
	if err := c.post(ctx, "/subscriptions/validate", model.ValidateUsageRequest{Feature: feature}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
