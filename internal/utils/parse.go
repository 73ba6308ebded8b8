// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidNumber is returned when a numeric field cannot be parsed.
var ErrInvalidNumber = errors.New("invalid number")

// ParseID parses a positive decimal record id such as a path parameter.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, strconv.IntSize)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: id %q", ErrInvalidNumber, s)
	}
	return uint(n), nil
}

// ParseFloatField parses an optional form field. Empty (after trimming)
// yields 0; anything else must be a finite number.
func ParseFloatField(name, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, name, s)
	}
	return f, nil
}

// ParseIntField parses an optional integer form field. Empty (after
// trimming) yields 0.
func ParseIntField(name, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, name, s)
	}
	return n, nil
}
