package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	ts := NewTextSanitizer()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"control chars", "Góð\x00an\x07 dag", "Góðan dag"},
		{"zero width", "orð\u200Borð", "orðorð"},
		{"joiners and bom", "\uFEFFsam\u200Dsett\u200Corð", "samsettorð"},
		{"no-break space", "tvö\u00A0orð", "tvö orð"},
		{"crlf", "fyrsta\r\nönnur\rþriðja", "fyrsta\nönnur\nþriðja"},
		{"spaces", "  mörg    bil\t\tog tab  ", "mörg bil og tab"},
		{"blank lines", "a\n\n\n\n\n\nb", "a\n\n\nb"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ts.SanitizeText(tc.in))
		})
	}
}

func TestSanitizeTextKeepsWordCount(t *testing.T) {
	ts := NewTextSanitizer()

	assert.Equal(t, 3, CountWords(ts.SanitizeText("eitt\u200Borð tvö\u200Dorð þrjú\u00A0")))
	assert.Equal(t, 2, CountWords(ts.SanitizeText("tvö\u00A0orð")))
}
