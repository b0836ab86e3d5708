package services

import (
	"fmt"
	"strings"
)

const (
	DocxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	DocxExtension = ".docx"
)

// Upload is a single multipart file as received from the client.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

// WordRange is an inclusive bound on whitespace-delimited tokens.
type WordRange struct {
	Min int
	Max int
}

func (r WordRange) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// UploadValidator decides whether an upload may reach the model.
type UploadValidator struct {
	Range         WordRange
	CheckFilename bool
}

// CheckType runs before extraction.
func (v UploadValidator) CheckType(mediaType, filename string) error {
	if mediaType != DocxMediaType {
		return invalidFileType()
	}
	if v.CheckFilename && !strings.HasSuffix(strings.ToLower(filename), DocxExtension) {
		return invalidFileType()
	}
	return nil
}

// CheckLength runs on the extracted text.
func (v UploadValidator) CheckLength(text string) error {
	if !v.Range.Contains(CountWords(text)) {
		return &ClientInputError{
			Reason: ReasonWordCount,
			Detail: fmt.Sprintf("The document must contain between %d and %d words.", v.Range.Min, v.Range.Max),
		}
	}
	return nil
}

func CountWords(text string) int {
	return len(strings.Fields(text))
}

func invalidFileType() error {
	return &ClientInputError{
		Reason: ReasonInvalidFileType,
		Detail: "Invalid file type. Please upload a .docx file.",
	}
}
