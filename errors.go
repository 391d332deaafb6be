package moosedb

import (
	"errors"

	"github.com/hazyhaar/moosedb/internal/store"
)

// ErrInvalidArgument is returned when an operation is called with arguments
// that fail validation, before any storage access happens.
var ErrInvalidArgument = errors.New("moosedb: invalid argument")

// ErrDuplicateName is returned when a save collides with an existing name.
// Names are immutable once created; there is no rename.
var ErrDuplicateName = store.ErrDuplicateName
