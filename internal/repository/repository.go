// Package repository holds the GORM-backed implementations of the domain
// repository interfaces. The same code runs against Postgres (hosted mode)
// and SQLite (local embedded mode); queries stay inside the portable subset.
package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vivesalud/productiva/internal/domain"
)

// wrapWriteErr maps driver constraint violations onto the shared integrity
// error so callers can classify them without knowing the backend. Requires
// gorm.Config.TranslateError.
func wrapWriteErr(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%s: %w", op, domain.ErrIntegrityViolation)
	}
	return fmt.Errorf("%s: %w", op, err)
}
