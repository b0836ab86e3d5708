package services

import (
	"github.com/invopop/jsonschema"
)

// ResponseFormat is the json_schema response format sent with a completion.
type ResponseFormat struct {
	Name   string
	Strict bool
	Schema *jsonschema.Schema
}

type chapterDef struct {
	Key         string
	Description string
}

// Optional memo sections in the order they are added to the schema.
var memoChapters = []chapterDef{
	{Key: "inngangur", Description: "Inngangur minnisblaðsins."},
	{Key: "samantekt", Description: "Samantekt minnisblaðsins."},
	{Key: "aaetlun", Description: "Áætlun minnisblaðsins."},
	{Key: "markmid", Description: "Markmið minnisblaðsins."},
}

func knownChapter(key string) bool {
	for _, c := range memoChapters {
		if c.Key == key {
			return true
		}
	}
	return false
}

// ChapterKeys lists the chapter vocabulary in schema order.
func ChapterKeys() []string {
	keys := make([]string, 0, len(memoChapters))
	for _, c := range memoChapters {
		keys = append(keys, c.Key)
	}
	return keys
}

// BuildMemoFormat returns the memo schema for a chapter selection. Unknown keys
// are ignored and the output does not depend on selection order.
func BuildMemoFormat(selection []string, strict bool) ResponseFormat {
	selected := make(map[string]bool, len(selection))
	for _, key := range selection {
		selected[key] = true
	}

	chapterItem := objectSchema("")
	chapterItem.Properties.Set("chapter_title", stringSchema("Titill kafla."))
	chapterItem.Properties.Set("content", stringSchema("Innihald kafla."))
	chapterItem.Required = []string{"chapter_title", "content"}

	root := objectSchema("")
	root.Properties.Set("titill", stringSchema("Titill minnisblaðsins."))
	root.Properties.Set("kaflar", &jsonschema.Schema{
		Type:        "array",
		Description: "Kaflar minnisblaðsins.",
		Items:       chapterItem,
	})
	root.Required = []string{"titill", "kaflar"}

	for _, c := range memoChapters {
		if !selected[c.Key] {
			continue
		}
		root.Properties.Set(c.Key, stringSchema(c.Description))
		root.Required = append(root.Required, c.Key)
	}

	return ResponseFormat{Name: "minnisblad", Strict: strict, Schema: root}
}

// BuildReviewFormat returns the schema for language and style feedback on a memo.
func BuildReviewFormat(strict bool) ResponseFormat {
	feedback := objectSchema("")
	feedback.Properties.Set("malfar", stringSchema(
		"Hérna setur þú inn hvað megi bæta og breyta varðandi málfar, stíl og uppbyggingu minnisblaðsins."))
	feedback.Properties.Set("stafsetning", stringSchema(
		"Hérna setur þú inn hvað megi bæta og breyta varðandi stafsetningu. Bentu skýrt á allar stafsetningarvillur með því að vitna í textann sem á við."))
	feedback.Properties.Set("radleggingar", stringSchema(
		"Hérna setur þú inn almennar ráðleggingar. Hafðu í huga hvernig minnisblöð eru almennt uppbyggð."))
	feedback.Required = []string{"malfar", "stafsetning", "radleggingar"}

	root := objectSchema("Minnisblad_adstod")
	root.Properties.Set("name", stringSchema("The name of the schema"))
	root.Properties.Set("type", &jsonschema.Schema{
		Type:        "string",
		Description: "The type of the schema (should match JSON Schema types)",
		Enum:        []any{"object", "array", "string", "number", "boolean", "null"},
	})
	root.Properties.Set("properties", feedback)
	root.Required = []string{"name", "type", "properties"}

	return ResponseFormat{Name: "Minnisblad_adstod", Strict: strict, Schema: root}
}

func objectSchema(title string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:                title,
		Type:                 "object",
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

func stringSchema(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}
