package model

import "encoding/json"

// PlanScope says whether a plan covers every category or just one.
type PlanScope string

const (
	PlanScopeGlobal   PlanScope = "GLOBAL"
	PlanScopeCategory PlanScope = "CATEGORY"
)

// PlanFeatures lists per-plan limits. Nil limits mean unlimited.
type PlanFeatures struct {
	CustomPaperPerDay      *int `json:"customPaperPerDay,omitempty"`
	ExamsPerDay            *int `json:"examsPerDay,omitempty"`
	MaxCustomPapersStorage *int `json:"maxCustomPapersStorage,omitempty"`
	NoAds                  bool `json:"noAds,omitempty"`
	MultiLanguageAccess    bool `json:"multiLanguageAccess,omitempty"`
}

// SubscriptionPlan is a purchasable plan.
type SubscriptionPlan struct {
	ID             string        `json:"_id"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Price          float64       `json:"price"`
	Currency       string        `json:"currency,omitempty"`
	DurationInDays int           `json:"durationInDays"`
	Scope          PlanScope     `json:"scope"`
	CategoryID     string        `json:"categoryId,omitempty"`
	Features       *PlanFeatures `json:"features,omitempty"`
}

// SubscribeRequest completes a purchase after payment.
type SubscribeRequest struct {
	PlanID    string `json:"planId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
}

// UsageFeature names a metered feature.
type UsageFeature string

const (
	UsageCustomPaper UsageFeature = "customPaper"
	UsageExams       UsageFeature = "exams"
)

// ValidateUsageRequest asks whether a metered feature may be used now.
type ValidateUsageRequest struct {
	Feature UsageFeature `json:"feature" binding:"required,oneof=customPaper exams"`
}

// PaymentKey is the public key for the payment gateway.
type PaymentKey struct {
	Key string `json:"key"`
}

// MySubscription is kept opaque; the backend shape varies by plan scope.
type MySubscription = json.RawMessage
