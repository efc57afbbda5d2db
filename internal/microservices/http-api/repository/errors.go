package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when an id does not resolve. List methods return an
// empty slice instead.
var ErrNotFound = errors.New("record not found")

// wrap maps gorm.ErrRecordNotFound to ErrNotFound and annotates everything else.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
