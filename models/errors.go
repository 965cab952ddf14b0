package models

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds. Callers match them with errors.Is; the concrete errors below
// wrap one of these.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrReferentialConflict = errors.New("referential conflict")
	ErrConflict            = errors.New("concurrent stock update, retry with a fresh suggestion")
)

var (
	// ErrMaterialNotFound is returned when a raw material is not found.
	ErrMaterialNotFound = fmt.Errorf("material %w", ErrNotFound)
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	// ErrRecipeNotFound is returned when a product has no recipe lines, or a
	// specific recipe line does not exist.
	ErrRecipeNotFound = fmt.Errorf("recipe %w", ErrNotFound)
	// ErrMaterialInUse is returned when deleting a material still referenced by a recipe.
	ErrMaterialInUse = fmt.Errorf("%w: material is used by a product recipe", ErrReferentialConflict)
	// ErrMalformedRecipe marks persisted recipe data that breaks the model invariants.
	ErrMalformedRecipe = errors.New("malformed recipe line")
)

// InsufficientStockError names the material that caps a deduction.
type InsufficientStockError struct {
	MaterialID   uint
	MaterialName string
	Required     int64
	Available    int64
}

func (e *InsufficientStockError) Error() string {
	name := e.MaterialName
	if name == "" {
		name = fmt.Sprintf("material #%d", e.MaterialID)
	}
	return fmt.Sprintf("insufficient stock of %s: required %d, available %d", name, e.Required, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Postgres error codes that mean "the transaction lost a race, try again".
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// translateError maps storage errors onto the error kinds above. Errors it
// does not recognise are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return invalidf("record already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: record is referenced by or references a missing record", ErrReferentialConflict)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
			return fmt.Errorf("%w (%s)", ErrConflict, pgErr.Code)
		}
	}
	return err
}
