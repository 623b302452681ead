// Package statemachine holds the legal order status changes a chef may make.
package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chefhut/storefront/internal/model"
)

var ErrInvalidTransition = errors.New("invalid order transition")

const ActorChef = "chef"

type Transition struct {
	From  string
	To    string
	Actor string
	// Label is the action name shown on the chef's order list.
	Label string
}

var transitions = []Transition{
	{From: model.OrderPending, To: model.OrderAccepted, Actor: ActorChef, Label: "Accept"},
	{From: model.OrderPending, To: model.OrderCancelled, Actor: ActorChef, Label: "Cancel"},
	{From: model.OrderAccepted, To: model.OrderDelivered, Actor: ActorChef, Label: "Deliver"},
}

type transitionKey struct {
	from, to, actor string
}

var transitionSet = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool, len(transitions))
	for _, t := range transitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom lists the moves available to actor from status.
func ValidTransitionsFrom(status, actor string) []Transition {
	var out []Transition
	for _, t := range transitions {
		if t.From == status && t.Actor == actor {
			out = append(out, t)
		}
	}
	return out
}

func CanTransition(from, to, actor string) error {
	if transitionSet[transitionKey{from, to, actor}] {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s for %s (allowed: %s)", ErrInvalidTransition, from, to, actor, describe(from, actor))
}

func describe(from, actor string) string {
	next := ValidTransitionsFrom(from, actor)
	if len(next) == 0 {
		return "none"
	}
	names := make([]string, len(next))
	for i, t := range next {
		names[i] = t.To
	}
	return strings.Join(names, ", ")
}
