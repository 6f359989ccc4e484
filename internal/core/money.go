// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing signed monetary amounts from the
// bank export and rendering them with exactly two fractional digits.
package core

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

type Money struct {
	Cents int64
}

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a signed decimal string to Money with half-up rounding
// on the third fractional digit.
//
// It accepts dot (12.34) and comma (12,34) decimal separators, a leading sign,
// and thousands grouped with spaces or non-breaking spaces ("1 234,56").
//
// Examples:
//
//	ParseAmount("-586.92") -> -58692
//	ParseAmount("1 000,5") -> 100050
//	ParseAmount("12.345")  -> 1235 (rounds away from zero)
func ParseAmount(s string) (Money, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv >= maxSafe {
		return Money{}, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	cents := iv*100 + frac
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// MustAmount is ParseAmount for literals known to be valid.
func MustAmount(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		panic("core: invalid amount literal " + strconv.Quote(s))
	}
	return m
}

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// FloorUnits truncates m to a whole multiple of per currency units, then
// divides by per. For non-negative amounts this is floor(m / per).
func (m Money) FloorUnits(per int64) Money {
	units := m.Cents / (per * 100)
	return Money{Cents: units * 100}
}

// String renders the amount with two decimals and a dot separator.
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	rem := cents % 100
	frac := strconv.FormatInt(rem, 10)
	if rem < 10 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + frac
}

// Float returns the amount as float64 for display purposes only.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAmount(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
