package validation

import (
	"testing"

	"url-chatroom/internal/chaterr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nickname struct {
	DisplayName string `json:"display_name" label:"Nickname" validate:"required,min=2,max=64"`
}

type post struct {
	Content string `json:"content" validate:"required,max=10"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(nickname{DisplayName: "Ana"}))

	err := Struct(nickname{DisplayName: "a"})
	var valErr *chaterr.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Nickname", valErr.Field)
	assert.Equal(t, "Nickname must be at least 2 characters", valErr.Message)

	err = Struct(post{})
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "content is required", valErr.Message)

	err = Struct(post{Content: "this is far too long"})
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "content must be at most 10 characters", valErr.Message)
}

func TestStructCountsRunes(t *testing.T) {
	assert.NoError(t, Struct(nickname{DisplayName: "Çé"}))
}
