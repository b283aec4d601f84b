package core

import (
	"fmt"
	"strconv"
)

// Rule is an elementary automaton rule number. Bit n gives the next state for
// the neighbourhood whose left/center/right encoding equals n.
type Rule uint8

// DefaultRule is used when no rule is configured.
const DefaultRule Rule = 30

// Lookup returns the next state for a packed 3-bit neighbourhood.
func (r Rule) Lookup(n uint8) uint8 {
	return (uint8(r) >> (n & 7)) & 1
}

// NextState returns the next state of a cell given its neighbourhood.
func (r Rule) NextState(left, center, right uint8) uint8 {
	return r.Lookup((left&1)<<2 | (center&1)<<1 | right&1)
}

// NextState applies rule to a neighbourhood without range checking; rules
// outside [0,255] are masked to their low 8 bits.
func NextState(rule int, left, center, right uint8) uint8 {
	return Rule(rule & 0xff).NextState(left, center, right)
}

// ValidateRule converts a configured rule number into a Rule.
func ValidateRule(n int) (Rule, error) {
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("%w: rule %d outside [0,255]", ErrInvalidConfig, n)
	}
	return Rule(n), nil
}

// ParseRule parses an unsigned decimal rule number.
func ParseRule(s string) (Rule, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: rule %q is not a decimal number", ErrInvalidConfig, s)
	}
	return ValidateRule(n)
}
