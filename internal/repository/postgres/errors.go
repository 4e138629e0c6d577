package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects the write.
	ErrDuplicate = errors.New("record already exists")
	// ErrForeignKey is returned when a referenced parent row does not exist.
	ErrForeignKey = errors.New("referenced record does not exist")
)

// translate maps driver and ORM errors to the package sentinels. Unknown
// errors are returned untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return errors.Join(ErrDuplicate, err)
		case pgerrcode.ForeignKeyViolation:
			return errors.Join(ErrForeignKey, err)
		}
	}
	return err
}
