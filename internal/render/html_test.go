package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumendocs/lumen/internal/entity"
)

func TestHTMLReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, testCorpus(t), ""))
	page := buf.String()

	assert.Contains(t, page, "<title>Code Documentation</title>")
	assert.Contains(t, page, "4 entities in 3 units, 75% documented, about 45 minutes of reading saved")
	assert.Contains(t, page, `id="detail-1111aaaa2222bbbb"`)
	assert.Contains(t, page, `data-detail="detail-1111aaaa2222bbbb"`)
	assert.Contains(t, page, "create_user")
	assert.Contains(t, page, "src/users.py")
	assert.Contains(t, page, "No documentation found.", "undocumented helper gets the empty marker")
	assert.Contains(t, page, "NOT NULL", "column detail reaches the parameter table")
}

func TestHTMLEscapesContent(t *testing.T) {
	t.Parallel()

	corpus := entity.NewCorpus()
	require.NoError(t, corpus.Add(entity.Entity{
		ID:            "aaaa111122223333",
		Kind:          entity.KindFunction,
		Name:          "escapeme",
		Language:      entity.LangJavaScript,
		Unit:          "web/x.js",
		Documentation: `Renders <script>alert("x")</script> safely.`,
		Span:          entity.Span{StartLine: 1, EndLine: 2},
		SourceText:    "function escapeme() {}",
		Visibility:    entity.VisibilityUnspecified,
	}))

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, corpus, "Report"))
	page := buf.String()

	assert.NotContains(t, page, `<script>alert("x")</script>`)
	assert.Contains(t, page, "&lt;script&gt;")
}

func TestHTMLCustomTitle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, testCorpus(t), "Acme Internal Docs"))
	assert.Contains(t, buf.String(), "<title>Acme Internal Docs</title>")
}
