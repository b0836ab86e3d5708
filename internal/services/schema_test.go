package services

import (
	"encoding/json"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propertyKeys(s *jsonschema.Schema) []string {
	var keys []string
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func TestBuildMemoFormatBase(t *testing.T) {
	format := BuildMemoFormat(nil, true)

	assert.Equal(t, "minnisblad", format.Name)
	assert.True(t, format.Strict)
	assert.Equal(t, []string{"titill", "kaflar"}, propertyKeys(format.Schema))
	assert.Equal(t, []string{"titill", "kaflar"}, format.Schema.Required)
}

func TestBuildMemoFormatFixedOrder(t *testing.T) {
	format := BuildMemoFormat([]string{"markmid", "nonsense", "inngangur", "markmid", "samantekt"}, true)

	want := []string{"titill", "kaflar", "inngangur", "samantekt", "markmid"}
	assert.Equal(t, want, propertyKeys(format.Schema))
	assert.Equal(t, want, format.Schema.Required)
}

func TestBuildMemoFormatDeterministic(t *testing.T) {
	a, err := json.Marshal(BuildMemoFormat([]string{"aaetlun", "inngangur"}, true).Schema)
	require.NoError(t, err)
	b, err := json.Marshal(BuildMemoFormat([]string{"inngangur", "aaetlun"}, true).Schema)
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
}

func TestBuildMemoFormatClosedObjects(t *testing.T) {
	raw, err := json.Marshal(BuildMemoFormat([]string{"samantekt"}, true).Schema)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, false, doc["additionalProperties"])

	props := doc["properties"].(map[string]any)
	items := props["kaflar"].(map[string]any)["items"].(map[string]any)
	assert.Equal(t, false, items["additionalProperties"])
	assert.ElementsMatch(t, []any{"chapter_title", "content"}, items["required"])

	assert.Len(t, doc["required"], len(props))
}

func TestBuildReviewFormat(t *testing.T) {
	format := BuildReviewFormat(false)

	assert.Equal(t, "Minnisblad_adstod", format.Name)
	assert.Equal(t, []string{"name", "type", "properties"}, propertyKeys(format.Schema))

	feedback, ok := format.Schema.Properties.Get("properties")
	require.True(t, ok)
	assert.Equal(t, []string{"malfar", "stafsetning", "radleggingar"}, propertyKeys(feedback))
	assert.Equal(t, feedback.Required, propertyKeys(feedback))
}

func TestKnownChapter(t *testing.T) {
	assert.True(t, knownChapter("aaetlun"))
	assert.False(t, knownChapter("Inngangur"))
}

func TestChapterKeys(t *testing.T) {
	assert.Equal(t, []string{"inngangur", "samantekt", "aaetlun", "markmid"}, ChapterKeys())
}
