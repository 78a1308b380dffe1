package shared

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	Title string `json:"title" validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"title":"ok"}`))
	var target decodeTarget
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "ok", target.Title)

	// Unknown fields are rejected
	req = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"title":"ok","extra":1}`))
	assert.Error(t, DecodeJSON(req, &decodeTarget{}))

	// Malformed JSON
	req = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"title":`))
	assert.Error(t, DecodeJSON(req, &decodeTarget{}))
}

type selfValidating struct {
	ok bool
}

func (s selfValidating) Validate() error {
	if !s.ok {
		return assert.AnError
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	// Struct-tag validation
	assert.Error(t, ValidateRequest(decodeTarget{}))
	assert.NoError(t, ValidateRequest(decodeTarget{Title: "ok"}))

	// Types with their own Validate method bypass the struct validator
	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.ErrorIs(t, ValidateRequest(selfValidating{}), assert.AnError)
}
