package todos

import (
	"fmt"

	"checklist/internal/services"
)

// NotFoundError reports that no todo exists with the requested id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("todo with id %d not found", e.ID)
}

// Is lets callers match with errors.Is(err, services.ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == services.ErrNotFound
}
