package markup

import (
	"errors"
	"fmt"
)

// ErrRuleNotFound is returned when a ruler edit names a rule that does not exist.
var ErrRuleNotFound = errors.New("rule not found")

// ErrDuplicateRule is returned when a rule name is registered twice.
var ErrDuplicateRule = errors.New("duplicate rule")

type rule[F any] struct {
	name    string
	fn      F
	enabled bool
}

// Ruler keeps an ordered chain of named rules. Extensions position their
// rules relative to existing ones by name.
type Ruler[F any] struct {
	rules []rule[F]
}

// Push appends a rule to the end of the chain.
func (r *Ruler[F]) Push(name string, fn F) error {
	if r.index(name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, name)
	}
	r.rules = append(r.rules, rule[F]{name: name, fn: fn, enabled: true})
	return nil
}

// After inserts a rule directly after the rule named after.
func (r *Ruler[F]) After(after, name string, fn F) error {
	return r.insert(after, 1, name, fn)
}

// Before inserts a rule directly before the rule named before.
func (r *Ruler[F]) Before(before, name string, fn F) error {
	return r.insert(before, 0, name, fn)
}

func (r *Ruler[F]) insert(anchor string, offset int, name string, fn F) error {
	i := r.index(anchor)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, anchor)
	}
	if r.index(name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, name)
	}
	at := i + offset
	r.rules = append(r.rules, rule[F]{})
	copy(r.rules[at+1:], r.rules[at:])
	r.rules[at] = rule[F]{name: name, fn: fn, enabled: true}
	return nil
}

// Enable turns the named rule on.
func (r *Ruler[F]) Enable(name string) error {
	return r.setEnabled(name, true)
}

// Disable turns the named rule off without removing it from the chain.
func (r *Ruler[F]) Disable(name string) error {
	return r.setEnabled(name, false)
}

func (r *Ruler[F]) setEnabled(name string, on bool) error {
	i := r.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, name)
	}
	r.rules[i].enabled = on
	return nil
}

// Names returns the names of enabled rules in chain order.
func (r *Ruler[F]) Names() []string {
	names := make([]string, 0, len(r.rules))
	for _, rl := range r.rules {
		if rl.enabled {
			names = append(names, rl.name)
		}
	}
	return names
}

// Rules returns the enabled rule functions in chain order.
func (r *Ruler[F]) Rules() []F {
	fns := make([]F, 0, len(r.rules))
	for _, rl := range r.rules {
		if rl.enabled {
			fns = append(fns, rl.fn)
		}
	}
	return fns
}

func (r *Ruler[F]) index(name string) int {
	for i, rl := range r.rules {
		if rl.name == name {
			return i
		}
	}
	return -1
}
