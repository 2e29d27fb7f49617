package store

import (
	"fmt"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

// Sentinel errors. They match any domain error with the same code, so
// errors.Is(err, ErrNotFound) also holds for codec and service not-found errors.
var (
	ErrNotFound = domainerrors.NotFound("contact not found")

	ErrAlreadyExists = domainerrors.AlreadyExists("contact already exists")

	// ErrNoContacts is returned by HighestContactID on an empty store.
	ErrNoContacts = domainerrors.NotFound("no contacts exist")

	ErrInvalidInput = domainerrors.Validation("invalid input")
)

// DuplicateSlug reports a unique slug collision.
func DuplicateSlug(slug string) error {
	return domainerrors.AlreadyExists(fmt.Sprintf("a contact with slug %q already exists", slug))
}
