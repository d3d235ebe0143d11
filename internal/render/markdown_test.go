package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumendocs/lumen/internal/entity"
)

func TestMarkdown(t *testing.T) {
	t.Parallel()

	doc := Markdown(testCorpus(t))

	assert.True(t, strings.HasPrefix(doc, "# Code Documentation\n\n"))
	assert.Contains(t, doc, "## create_user\n")
	assert.Contains(t, doc, "**Kind:** function\n")
	assert.Contains(t, doc, "**Parameters:** name, email\n")
	assert.Contains(t, doc, "**Defined in:** src/users.py (lines 10-18)\n")
	assert.Contains(t, doc, "```python\nresult = create_user(arg1, arg2)\n```")
	assert.Equal(t, 4, strings.Count(doc, "\n---\n"), "one separator per entity")
}

func TestMarkdownZeroParams(t *testing.T) {
	t.Parallel()

	doc := Markdown(testCorpus(t))

	sections := strings.Split(doc, "\n---\n")
	var helperSection string
	for _, section := range sections {
		if strings.Contains(section, "## helper") {
			helperSection = section
		}
	}
	assert.Contains(t, helperSection, "**Parameters:** None")
	assert.Contains(t, helperSection, "**Documentation:**\n\n\n", "empty documentation renders empty, not omitted")
}

func TestMarkdownEmptyCorpus(t *testing.T) {
	t.Parallel()

	doc := Markdown(entity.NewCorpus())
	assert.Equal(t, "# Code Documentation\n\n", doc)
}
