package store_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
	"github.com/listenupapp/fieldcodec/internal/store"
)

func TestSentinels_MatchByCode(t *testing.T) {
	assert.True(t, errors.Is(store.ErrNoContacts, store.ErrNotFound))
	assert.True(t, errors.Is(store.ErrNoContacts, domainerrors.ErrNotFound))
	assert.True(t, errors.Is(store.DuplicateSlug("ada"), store.ErrAlreadyExists))
	assert.False(t, errors.Is(store.ErrNotFound, store.ErrAlreadyExists))
}

func TestSentinels_HTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *domainerrors.Error
		want int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"already exists", store.ErrAlreadyExists, http.StatusConflict},
		{"invalid input", store.ErrInvalidInput, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestDuplicateSlug_Message(t *testing.T) {
	assert.Contains(t, store.DuplicateSlug("ada").Error(), `"ada"`)
}
