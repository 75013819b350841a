package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextPlainFiles(t *testing.T) {
	for _, name := range []string{"notes.txt", "notes.md", "notes"} {
		text, err := ExtractText(name, []byte("tutoring notes"))
		require.NoError(t, err, name)
		assert.Equal(t, "tutoring notes", text)
	}
}

func TestExtractTextInvalidPDF(t *testing.T) {
	_, err := ExtractText("broken.pdf", []byte("not a pdf"))
	assert.Error(t, err)
}
