package order

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusPreparing  Status = "preparing"
	StatusReady      Status = "ready"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// lifecycle order; canceled sits outside it
var lifecycle = []Status{
	StatusProcessing, StatusPreparing, StatusReady,
	StatusShipped, StatusDelivered, StatusCompleted,
}

func rank(s Status) int {
	for i, v := range lifecycle {
		if v == s {
			return i
		}
	}
	return -1
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st == StatusCanceled || rank(st) >= 0 {
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, s)
}

func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusCanceled }

// CheckTransition allows forward moves along the lifecycle, skipping steps
// included. Cancellation is not a status update; it goes through the refund flow.
func CheckTransition(from, to Status) error {
	switch {
	case from.Terminal():
		return fmt.Errorf("%w: %s is final", ErrInvalidTransition, from)
	case to == StatusCanceled:
		return fmt.Errorf("%w: use the cancellation endpoint", ErrInvalidTransition)
	case rank(to) < 0:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	case rank(to) <= rank(from):
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
