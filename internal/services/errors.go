package services

import "errors"

var (
	// ErrAccountNotFound means the account id is not configured.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDrinkNotFound means the day has no entry matching the
	// drink/measure pair.
	ErrDrinkNotFound = errors.New("no matching drink logged on that day")

	// ErrDrinksStillPresent means the removal pass before marking a
	// drink free day did not leave the day empty.
	ErrDrinksStillPresent = errors.New("drinks still present after removal")

	// ErrInvalidQuality rejects sleep quality values outside the set
	// the upstream accepts.
	ErrInvalidQuality = errors.New("sleep quality must be poor, average or great")
)
