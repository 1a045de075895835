package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_IsUnknown(t *testing.T) {
	for _, name := range SupportedFormats() {
		assert.False(t, Format(name).IsUnknown(), name)
	}
	assert.True(t, Format("xlsx").IsUnknown())
	assert.True(t, Format("").IsUnknown())
	assert.True(t, Format("CSV").IsUnknown(), "names are matched after lowering")
}

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats([]string{" JSON", "csv", "json"})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatJSON, FormatCSV}, formats)

	_, err = ParseFormats([]string{"csv", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"xml"`)
}
