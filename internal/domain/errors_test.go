package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataError_Is(t *testing.T) {
	cause := errors.New("bad layout")
	err := fmt.Errorf("load posts: %w", NewParseError("tweets.csv", 4, "data", "ontem", cause))

	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrType)

	var de *DataError
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, 4, de.Row)
}

func TestDataError_Message(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{
			err:  NewTypeError("pluvio.csv", 3, "Garcia", "abc"),
			want: `pluvio.csv: row 3, column "Garcia": type error: expected a number (value "abc")`,
		},
		{
			err:  NewSchemaError("tweets.csv", "texto", "missing column"),
			want: `tweets.csv: column "texto": schema error: missing column`,
		},
		{
			err:  NewRangeError("prob.csv", 2, "p", "1.2", "must be within [0, 1]"),
			want: `prob.csv: row 2, column "p": range error: must be within [0, 1] (value "1.2")`,
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Error())
	}
}
