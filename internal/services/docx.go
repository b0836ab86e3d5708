package services

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"frodi/internal/logger"
	"frodi/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
)

const untitledMemo = "Titill Ekki Tiltækur"

// ActivateLicense registers the UniDoc metered key. unioffice refuses to read
// or save documents without one, so an empty key is an error.
func ActivateLicense(key string) error {
	if key == "" {
		return fmt.Errorf("UNIDOC_LICENSE_API_KEY is required: %w", ErrDocxUnlicensed)
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("set unidoc license: %w", err)
	}
	return nil
}

func docxLicensed() bool {
	return license.GetLicenseKey().IsLicensed()
}

// DocxService reads and writes Word documents.
type DocxService struct {
	tempDir string
}

// NewDocxService writes assembled documents under tempDir, or the OS default when empty.
func NewDocxService(tempDir string) *DocxService {
	return &DocxService{tempDir: tempDir}
}

// ExtractText returns the run text of every paragraph in document order, one
// paragraph per line.
func (s *DocxService) ExtractText(data []byte) (string, error) {
	if !docxLicensed() {
		return "", ErrDocxUnlicensed
	}
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Err: err}
	}
	defer doc.Close()

	paragraphs := doc.Paragraphs()
	lines := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		var line strings.Builder
		for _, run := range para.Runs() {
			line.WriteString(run.Text())
		}
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n"), nil
}

type section struct {
	heading string
	body    *string
}

// Assemble renders a memo into a new temporary .docx file and returns its
// path. The caller owns the file and must remove it.
func (s *DocxService) Assemble(result *models.MemoResult) (string, error) {
	if !docxLicensed() {
		return "", ErrDocxUnlicensed
	}
	doc := document.New()
	defer doc.Close()

	title := untitledMemo
	if result.Title != nil {
		title = *result.Title
	}
	addParagraph(doc, "Heading1", title)

	for _, sec := range []section{
		{heading: "Inngangur", body: result.Introduction},
		{heading: "Markmið", body: result.Objective},
		{heading: "Áætlun", body: result.Plan},
	} {
		addSection(doc, sec)
	}
	for _, chapter := range result.Chapters {
		content := chapter.Content
		addSection(doc, section{heading: chapter.Title, body: &content})
	}
	addSection(doc, section{heading: "Samantekt", body: result.Summary})

	tmp, err := os.CreateTemp(s.tempDir, "minnisblad-*.docx")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()

	if err := doc.Save(tmp); err != nil {
		tmp.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to save docx: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close docx: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"path":     path,
		"chapters": len(result.Chapters),
	}).Debug("Assembled memo document")

	return path, nil
}

func addSection(doc *document.Document, sec section) {
	if sec.body == nil {
		return
	}
	addParagraph(doc, "Heading2", sec.heading)
	addParagraph(doc, "", *sec.body)
}

func addParagraph(doc *document.Document, style, text string) {
	para := doc.AddParagraph()
	if style != "" {
		para.SetStyle(style)
	}
	para.AddRun().AddText(text)
}
