package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("orð ", n))
}

func TestUploadValidatorLength(t *testing.T) {
	v := UploadValidator{Range: WordRange{Min: 10, Max: 5000}}

	for _, n := range []int{0, 5, 9, 5001, 6000} {
		err := v.CheckLength(words(n))
		var clientErr *ClientInputError
		require.True(t, errors.As(err, &clientErr), "count %d", n)
		assert.Equal(t, ReasonWordCount, clientErr.Reason)
		assert.Equal(t, "The document must contain between 10 and 5000 words.", clientErr.Detail)
	}
	for _, n := range []int{10, 11, 4000, 5000} {
		assert.NoError(t, v.CheckLength(words(n)), "count %d", n)
	}
}

func TestUploadValidatorCountsAcrossNewlines(t *testing.T) {
	v := UploadValidator{Range: WordRange{Min: 3, Max: 3}}

	assert.NoError(t, v.CheckLength("eitt\n\ntvö\t  þrjú\n"))
}

func TestUploadValidatorType(t *testing.T) {
	v := UploadValidator{Range: WordRange{Min: 1, Max: 10}, CheckFilename: true}

	assert.NoError(t, v.CheckType(DocxMediaType, "skjal.docx"))
	assert.NoError(t, v.CheckType(DocxMediaType, "SKJAL.DOCX"))

	cases := []struct{ mediaType, filename string }{
		{"text/plain", "skjal.docx"},
		{"application/pdf", "skjal.pdf"},
		{DocxMediaType, "skjal.txt"},
		{"", ""},
	}
	for _, tc := range cases {
		err := v.CheckType(tc.mediaType, tc.filename)
		var clientErr *ClientInputError
		require.True(t, errors.As(err, &clientErr), "%+v", tc)
		assert.Equal(t, ReasonInvalidFileType, clientErr.Reason)
	}
}

func TestUploadValidatorFilenameCheckOptional(t *testing.T) {
	v := UploadValidator{Range: WordRange{Min: 1, Max: 10}}

	assert.NoError(t, v.CheckType(DocxMediaType, "blob"))
}

func TestTokenValidator(t *testing.T) {
	v := NewTokenValidator("leyndo")

	assert.NoError(t, v.Validate("Bearer", "leyndo"))
	assert.NoError(t, v.ValidateHeader("Bearer leyndo"))

	cases := []struct {
		header string
		reason AuthReason
	}{
		{"", AuthMissing},
		{"leyndo", AuthScheme},
		{"bearer leyndo", AuthScheme},
		{"Basic leyndo", AuthScheme},
		{"Bearer wrong", AuthToken},
		{"Bearer ", AuthToken},
	}
	for _, tc := range cases {
		err := v.ValidateHeader(tc.header)
		var authErr *AuthError
		require.True(t, errors.As(err, &authErr), "header %q", tc.header)
		assert.Equal(t, tc.reason, authErr.Reason, "header %q", tc.header)
	}
}

func TestTokenValidatorEmptySecretRejects(t *testing.T) {
	v := NewTokenValidator("")

	err := v.Validate("Bearer", "")
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "Invalid or expired token.", authErr.Error())
}
