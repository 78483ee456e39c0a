package common

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation es el código SQLSTATE de violación de restricción única.
const uniqueViolation = "23505"

// IsUniqueViolation indica si el error proviene de una restricción única.
// La unicidad (una reseña por servicio) se impone en la base, no con un
// check-then-insert en la aplicación.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
