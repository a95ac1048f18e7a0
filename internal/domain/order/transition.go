package order

import "fmt"

// transitions is the directed edge set of the order status machine.
// Delivered and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// UnknownStatusError indicates a status value outside the enum.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown order status %q", e.Value)
}

// InvalidTransitionError indicates a known status that is not reachable
// from the order's current status.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// ParseStatus validates a raw status string against the enum.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := transitions[s]; !ok {
		return "", &UnknownStatusError{Value: raw}
	}
	return s, nil
}

// ParsePaymentStatus validates a raw payment status string.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch s := PaymentStatus(raw); s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return s, nil
	default:
		return "", &UnknownStatusError{Value: raw}
	}
}

// CheckTransition reports whether an order may move from one status to
// another. Unknown targets yield UnknownStatusError; known but
// unreachable targets yield InvalidTransitionError.
func CheckTransition(from, to Status) error {
	allowed, ok := transitions[from]
	if !ok {
		return &UnknownStatusError{Value: string(from)}
	}
	if _, ok := transitions[to]; !ok {
		return &UnknownStatusError{Value: string(to)}
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}
