package extract

import (
	"sort"
	"strings"
)

// commentSpan is one comment found while masking, with original offsets.
// end is exclusive. doc marks comments of the attachable documentation
// shape for the language (doc blocks for C-like syntax, any comment for SQL).
type commentSpan struct {
	start int
	end   int
	text  string
	block bool
	doc   bool
}

// maskedUnit pairs a source text with a copy of identical length whose
// string literals and comment interiors are blanked. Structural scanning
// (declaration shapes, delimiter matching, comma splitting) runs on the
// masked text so quoted or commented-out code is never mistaken for a
// declaration; content is sliced from the original via the shared offsets.
type maskedUnit struct {
	src      string
	masked   string
	comments []commentSpan
	lines    []int
}

// lineAt returns the 1-based line number of the byte offset.
func (m *maskedUnit) lineAt(off int) int {
	n := sort.SearchInts(m.lines, off)
	if n < len(m.lines) && m.lines[n] == off {
		return n + 1
	}
	return n
}

func newLineIndex(src string) []int {
	lines := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}

// maskCLike blanks strings and comments in a C-like source (JavaScript,
// Java). backticks additionally treats ` as a string quote for JavaScript
// template literals. Doc comments are blocks opening with /**.
func maskCLike(src string, backticks bool) maskedUnit {
	out := []byte(src)
	var comments []commentSpan

	blank := func(from, to int) {
		for j := from; j < to && j < len(out); j++ {
			if out[j] != '\n' {
				out[j] = ' '
			}
		}
	}

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			end := strings.IndexByte(src[i:], '\n')
			if end == -1 {
				end = len(src)
			} else {
				end += i
			}
			comments = append(comments, commentSpan{start: i, end: end, text: src[i:end]})
			blank(i, end)
			i = end

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end == -1 {
				end = len(src)
			} else {
				end += i + 4
			}
			text := src[i:minInt(end, len(src))]
			comments = append(comments, commentSpan{
				start: i,
				end:   end,
				text:  text,
				block: true,
				doc:   strings.HasPrefix(text, "/**") && text != "/**/",
			})
			blank(i, end)
			i = end

		case c == '\'' || c == '"' || (backticks && c == '`'):
			j := i + 1
			for j < len(src) {
				if src[j] == '\\' {
					j += 2
					continue
				}
				if src[j] == c {
					break
				}
				j++
			}
			if j >= len(src) {
				j = len(src) - 1
			}
			blank(i+1, j)
			i = j + 1

		default:
			i++
		}
	}

	return maskedUnit{src: src, masked: string(out), comments: comments, lines: newLineIndex(src)}
}

// maskSQL blanks strings and comments in SQL text. Quotes may be escaped by
// doubling or a backslash; both -- line comments and /* */ blocks are
// attachable documentation.
func maskSQL(src string) maskedUnit {
	out := []byte(src)
	var comments []commentSpan

	blank := func(from, to int) {
		for j := from; j < to && j < len(out); j++ {
			if out[j] != '\n' {
				out[j] = ' '
			}
		}
	}

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '-' && i+1 < len(src) && src[i+1] == '-':
			end := strings.IndexByte(src[i:], '\n')
			if end == -1 {
				end = len(src)
			} else {
				end += i
			}
			comments = append(comments, commentSpan{start: i, end: end, text: src[i:end], doc: true})
			blank(i, end)
			i = end

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end == -1 {
				end = len(src)
			} else {
				end += i + 4
			}
			text := src[i:minInt(end, len(src))]
			comments = append(comments, commentSpan{start: i, end: end, text: text, block: true, doc: true})
			blank(i, end)
			i = end

		case c == '\'' || c == '"' || c == '`':
			j := i + 1
			for j < len(src) {
				if src[j] == '\\' {
					j += 2
					continue
				}
				if src[j] == c {
					if j+1 < len(src) && src[j+1] == c {
						j += 2
						continue
					}
					break
				}
				j++
			}
			if j >= len(src) {
				j = len(src) - 1
			}
			blank(i+1, j)
			i = j + 1

		default:
			i++
		}
	}

	return maskedUnit{src: src, masked: string(out), comments: comments, lines: newLineIndex(src)}
}

// findBalanced returns the offset of the delimiter closing the one at open,
// scanning masked text, or -1 when the text ends first.
func findBalanced(masked string, open int) int {
	var openCh, closeCh byte
	switch masked[open] {
	case '(':
		openCh, closeCh = '(', ')'
	case '[':
		openCh, closeCh = '[', ']'
	case '{':
		openCh, closeCh = '{', '}'
	default:
		return -1
	}

	depth := 1
	for i := open + 1; i < len(masked); i++ {
		switch masked[i] {
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// depthBetween counts unclosed braces in masked[from:to].
func depthBetween(masked string, from, to int) int {
	depth := 0
	for i := from; i < to && i < len(masked); i++ {
		switch masked[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

// splitTopLevel splits m.src[start:end] on commas at zero nesting depth.
// Depth tracking runs over the masked text, so commas inside string
// defaults never split; angles additionally tracks <> for generic types.
// Parts are trimmed; empty parts are dropped.
func (m *maskedUnit) splitTopLevel(start, end int, angles bool) []string {
	var parts []string
	paren, bracket, brace, angle := 0, 0, 0, 0
	last := start

	cut := func(to int) {
		part := strings.TrimSpace(m.src[last:to])
		if part != "" {
			parts = append(parts, part)
		}
		last = to + 1
	}

	for i := start; i < end && i < len(m.masked); i++ {
		switch m.masked[i] {
		case '(':
			paren++
		case ')':
			paren--
		case '[':
			bracket++
		case ']':
			bracket--
		case '{':
			brace++
		case '}':
			brace--
		case '<':
			if angles {
				angle++
			}
		case '>':
			if angles && angle > 0 {
				angle--
			}
		case ',':
			if paren == 0 && bracket == 0 && brace == 0 && angle == 0 {
				cut(i)
			}
		}
	}
	cut(minInt(end, len(m.src)))
	return parts
}

// attachDocs maps each declaration offset to the nearest preceding doc
// comment: a single left-to-right pass retains the most recent unconsumed
// doc comment and each declaration consumes it, so a comment attaches to at
// most one declaration and never skips over another declaration.
func attachDocs(comments []commentSpan, declOffsets []int) map[int]string {
	offsets := append([]int(nil), declOffsets...)
	sort.Ints(offsets)

	docs := make(map[int]string, len(offsets))
	pending := ""
	ci := 0
	for _, off := range offsets {
		for ci < len(comments) && comments[ci].end <= off {
			if comments[ci].doc {
				pending = cleanComment(comments[ci])
			}
			ci++
		}
		if pending != "" {
			docs[off] = pending
			pending = ""
		}
	}
	return docs
}

func cleanComment(c commentSpan) string {
	if !c.block && strings.HasPrefix(c.text, "--") {
		return cleanLineComments(c.text)
	}
	return cleanBlockComment(c.text)
}

// cleanBlockComment strips comment delimiters and per-line leading markers
// from a raw block or line comment.
func cleanBlockComment(raw string) string {
	text := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(text, "/**"):
		text = strings.TrimPrefix(text, "/**")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimPrefix(text, "/*")
	}
	text = strings.TrimSuffix(text, "*/")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		}
		cleaned = append(cleaned, line)
	}

	out := strings.Join(cleaned, "\n")
	return strings.Trim(out, "\n ")
}

// cleanLineComments strips the -- marker from each line of a run of SQL
// line comments and joins the remainder.
func cleanLineComments(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "--"))
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// skipSpace advances past whitespace, newlines included.
func skipSpace(masked string, i int) int {
	for i < len(masked) {
		switch masked[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
