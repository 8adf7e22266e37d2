package models

import (
	"fmt"
	"math"
	"time"
)

// Direction is the trigger condition of an alert.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
	DirectionTouch Direction = "touch"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionAbove, DirectionBelow, DirectionTouch:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction: %q", s)
}

// Status is the lifecycle state of an alert.
//
// Transitions are one-way: active -> triggered or active -> cancelled.
// Terminal states never change.
type Status string

const (
	StatusActive    Status = "active"
	StatusTriggered Status = "triggered"
	StatusCancelled Status = "cancelled"
)

// Alert represents a price-threshold alert on an instrument.
type Alert struct {
	ID             int64     `json:"id"`
	Symbol         string    `json:"symbol"`
	Instrument     string    `json:"instrument"` // resolved quote-provider code
	Direction      Direction `json:"direction"`
	Target         float64   `json:"target"`
	Note           string    `json:"note,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      int64     `json:"created_ts"`
	TriggeredAt    *int64    `json:"triggered_ts,omitempty"`
	TriggeredPrice *float64  `json:"triggered_price,omitempty"`
}

// IsActive reports whether the alert is still eligible for evaluation.
func (a *Alert) IsActive() bool {
	return a.Status == StatusActive
}

// CreatedTime returns the creation timestamp in UTC.
func (a *Alert) CreatedTime() time.Time {
	return time.Unix(a.CreatedAt, 0).UTC()
}

// ValidTarget reports whether a target price is a usable finite number.
func ValidTarget(target float64) bool {
	return !math.IsNaN(target) && !math.IsInf(target, 0)
}
