package domain

import "fmt"

type Step int

const (
	StepReview   Step = 1
	StepShipping Step = 2
	StepPayment  Step = 3
)

func (s Step) Valid() bool {
	return s >= StepReview && s <= StepPayment
}

// Next returns the following step, clamped at payment.
func (s Step) Next() Step {
	if s >= StepPayment {
		return StepPayment
	}
	if s < StepReview {
		return StepReview
	}
	return s + 1
}

// Previous returns the preceding step, clamped at review.
func (s Step) Previous() Step {
	if s <= StepReview {
		return StepReview
	}
	if s > StepPayment {
		return StepPayment
	}
	return s - 1
}

func (s Step) Title() string {
	switch s {
	case StepReview:
		return "Your order"
	case StepShipping:
		return "Shipping details"
	case StepPayment:
		return "Finalize"
	default:
		return ""
	}
}

func (s Step) String() string {
	return fmt.Sprintf("%d/3 %s", int(s), s.Title())
}
