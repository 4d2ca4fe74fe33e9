package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// =====================================================
// SUBSCRIPTION REQUESTS
// =====================================================

type CreateSubscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

func (r CreateSubscriptionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, is.URL),
		validation.Field(&r.Events,
			validation.Required,
			validation.Each(validation.In(eventTypeValues()...)),
		),
	)
}

type UpdateSubscriptionRequest struct {
	URL    *string   `json:"url,omitempty"`
	Events *[]string `json:"events,omitempty"`
	Active *bool     `json:"active,omitempty"`
}

func (r UpdateSubscriptionRequest) Validate() error {
	if r.URL == nil && r.Events == nil && r.Active == nil {
		return validation.NewError("validation_empty", "at least one field must be provided")
	}
	if r.URL != nil {
		if err := validation.Validate(*r.URL, validation.Required, is.URL); err != nil {
			return err
		}
	}
	if r.Events != nil {
		if err := validation.Validate(*r.Events,
			validation.Required,
			validation.Each(validation.In(eventTypeValues()...)),
		); err != nil {
			return err
		}
	}
	return nil
}

// =====================================================
// SUBSCRIPTION RESPONSES
// =====================================================

// CreateSubscriptionResponse is the only place the secret ever leaves
// the server.
type CreateSubscriptionResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Secret    string    `json:"secret"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// =====================================================
// EVENT LISTING
// =====================================================

type ListEventsRequest struct {
	Status *string `form:"status"`
	Limit  int     `form:"limit"`
	Offset int     `form:"offset"`
}

func (r *ListEventsRequest) Normalize() {
	if r.Limit < 1 || r.Limit > 100 {
		r.Limit = 20
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

func (r ListEventsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.In(
			EventStatusPending,
			EventStatusCompleted,
			EventStatusFailed,
		)),
	)
}

func eventTypeValues() []interface{} {
	out := make([]interface{}, 0, len(ValidEventTypes))
	for _, t := range ValidEventTypes {
		out = append(out, t)
	}
	return out
}
