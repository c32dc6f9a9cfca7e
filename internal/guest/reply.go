package guest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAttend = errors.New("invalid attendance")
	ErrInvalidMeal   = errors.New("invalid meal")
)

// Attend is a guest's attendance decision.
type Attend int

const (
	Unanswered Attend = iota
	Yes
	No
)

// ParseAttend accepts "Yes" or "No" in any case. The empty string is
// Unanswered.
func ParseAttend(s string) (Attend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unanswered, nil
	case "yes":
		return Yes, nil
	case "no":
		return No, nil
	default:
		return Unanswered, fmt.Errorf("%w: %q", ErrInvalidAttend, s)
	}
}

// String returns the guestlist column value; Unanswered is empty.
func (a Attend) String() string {
	switch a {
	case Yes:
		return "Yes"
	case No:
		return "No"
	default:
		return ""
	}
}

// Meal is a guest's meal choice. The zero value means no choice was made.
type Meal int

const (
	NoChoice Meal = iota
	Meat
	Fish
	Veggie
	// Skip records an explicit request for no meal.
	Skip
)

// Meals lists the selectable meals in display order.
var Meals = []Meal{Meat, Fish, Veggie, Skip}

// ParseMeal accepts a meal name in any case. The empty string is NoChoice.
func ParseMeal(s string) (Meal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return NoChoice, nil
	case "meat":
		return Meat, nil
	case "fish":
		return Fish, nil
	case "veggie":
		return Veggie, nil
	case "nomeal", "none", "skip":
		return Skip, nil
	default:
		return NoChoice, fmt.Errorf("%w: %q", ErrInvalidMeal, s)
	}
}

func (m Meal) String() string {
	switch m {
	case Meat:
		return "Meat"
	case Fish:
		return "Fish"
	case Veggie:
		return "Veggie"
	case Skip:
		return "NoMeal"
	default:
		return ""
	}
}

// Reply is the RSVP answer of one guest. A reply is always replaced as a
// whole; fields are never edited individually.
type Reply struct {
	Attend Attend
	Meal   Meal
	Msg    string
}

// ParseReply builds a reply from raw attend/meal/msg values.
func ParseReply(attend, meal, msg string) (Reply, error) {
	a, err := ParseAttend(attend)
	if err != nil {
		return Reply{}, err
	}
	m, err := ParseMeal(meal)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Attend: a, Meal: m, Msg: msg}, nil
}

// Validate clears the meal unless the guest is attending. It is idempotent.
func (r *Reply) Validate() {
	if r.Attend != Yes {
		r.Meal = NoChoice
	}
}

// Responded reports whether any part of the reply is set.
func (r Reply) Responded() bool {
	return r.Attend != Unanswered || r.Meal != NoChoice || r.Msg != ""
}

func (r Reply) String() string {
	switch r.Attend {
	case Yes:
		return fmt.Sprintf("yes(meal: %s, msg: %q)", r.Meal, r.Msg)
	case No:
		return "no"
	default:
		return "unanswered"
	}
}
