// Package models provides domain models for options pricing and strategy analysis.
package models

import (
	"strings"

	apperrors "options-lab/internal/errors"
)

// OptionKind represents the type of an option contract.
type OptionKind string

const (
	Call OptionKind = "CALL"
	Put  OptionKind = "PUT"
)

// Valid reports whether k is one of the supported option kinds.
func (k OptionKind) Valid() bool {
	return k == Call || k == Put
}

func (k OptionKind) String() string {
	return string(k)
}

// ParseOptionKind parses an option kind. Accepts CALL/PUT and the exchange
// shorthands CE/PE and C/P, case-insensitively.
func ParseOptionKind(s string) (OptionKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL", "CE", "C":
		return Call, nil
	case "PUT", "PE", "P":
		return Put, nil
	default:
		return "", apperrors.NewValidationError("type", s, "must be CALL or PUT")
	}
}

// UnmarshalText decodes JSON and YAML values through ParseOptionKind.
func (k *OptionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseOptionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Action represents the side of an option leg.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Valid reports whether a is one of the supported actions.
func (a Action) Valid() bool {
	return a == Buy || a == Sell
}

// Sign returns +1 for Buy and -1 for Sell.
func (a Action) Sign() float64 {
	if a == Sell {
		return -1
	}
	return 1
}

func (a Action) String() string {
	return string(a)
}

// ParseAction parses BUY/SELL case-insensitively.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "B", "LONG":
		return Buy, nil
	case "SELL", "S", "SHORT":
		return Sell, nil
	default:
		return "", apperrors.NewValidationError("action", s, "must be BUY or SELL")
	}
}

// UnmarshalText decodes JSON and YAML values through ParseAction.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
