package extract

import (
	"regexp"
	"strings"

	"github.com/lumendocs/lumen/internal/entity"
)

// sqlExtractor scans for CREATE statements at statement-start position.
// Strings and comments are masked first, so a governing keyword inside a
// literal or a comment never begins a statement.
type sqlExtractor struct{}

// Identifier shapes: double-quoted, backticked, or bare (optionally dotted).
// Quoted interiors are blanked in the masked text; the name is sliced from
// the original at the same offsets.
const sqlIdent = `("[^"\n]*"|` + "`[^`\n]*`" + `|[A-Za-z_][A-Za-z0-9_$.]*)`

var (
	sqlTableRe   = regexp.MustCompile(`(?is)^\s*CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?` + sqlIdent + `\s*\(`)
	sqlProcRe    = regexp.MustCompile(`(?is)^\s*CREATE\s+(?:OR\s+REPLACE\s+)?PROCEDURE\s+` + sqlIdent + `\s*\(`)
	sqlFuncRe    = regexp.MustCompile(`(?is)^\s*CREATE\s+(?:OR\s+REPLACE\s+)?FUNCTION\s+` + sqlIdent + `\s*\(`)
	sqlViewRe    = regexp.MustCompile(`(?is)^\s*CREATE\s+(?:OR\s+REPLACE\s+)?VIEW\s+` + sqlIdent + `\s+AS\s+`)
	sqlReturnsRe = regexp.MustCompile(`(?is)^\s*RETURNS?\s+([A-Za-z_][A-Za-z0-9_$]*(?:\s*\([^)]*\))?)`)
)

// Lines inside a table body that declare constraints rather than columns.
var sqlConstraintWords = map[string]bool{
	"PRIMARY": true, "FOREIGN": true, "UNIQUE": true, "KEY": true,
	"CONSTRAINT": true, "CHECK": true, "INDEX": true,
}

// Tokens that end the type portion of a column definition.
var sqlColumnModifiers = map[string]bool{
	"NOT": true, "NULL": true, "DEFAULT": true, "PRIMARY": true,
	"UNIQUE": true, "REFERENCES": true, "CHECK": true, "COMMENT": true,
	"COLLATE": true, "AUTO_INCREMENT": true, "AUTOINCREMENT": true,
	"GENERATED": true, "ON": true, "CONSTRAINT": true,
}

func (sqlExtractor) Language() entity.Language { return entity.LangSQL }

func (sqlExtractor) Extract(src string) ([]Capture, error) {
	m := maskSQL(src)
	comments := sqlCommentRuns(m.comments, m.src)

	var captures []Capture
	pending := ""
	ci := 0

	for _, st := range sqlStatements(m.masked) {
		declOff := skipSpace(m.masked, st.start)
		if declOff >= st.end {
			// Whitespace or comments only; the comments stay eligible for
			// the next statement.
			continue
		}

		// Comments ending before the statement update the pending doc; the
		// most recent one wins.
		for ci < len(comments) && comments[ci].end <= declOff {
			if comments[ci].doc {
				pending = cleanComment(comments[ci])
			}
			ci++
		}

		seg := m.masked[st.start:st.end]

		var c Capture
		var ok bool
		switch {
		case sqlTableRe.MatchString(seg):
			c, ok = sqlTableCapture(&m, st, sqlTableRe.FindStringSubmatchIndex(seg), declOff)
		case sqlProcRe.MatchString(seg):
			c, ok = sqlRoutineCapture(&m, st, sqlProcRe.FindStringSubmatchIndex(seg), declOff, entity.KindProcedure)
		case sqlFuncRe.MatchString(seg):
			c, ok = sqlRoutineCapture(&m, st, sqlFuncRe.FindStringSubmatchIndex(seg), declOff, entity.KindSQLFunction)
		case sqlViewRe.MatchString(seg):
			c, ok = sqlViewCapture(&m, st, sqlViewRe.FindStringSubmatchIndex(seg), declOff)
		}
		if !ok {
			// Any other statement breaks adjacency: a comment never attaches
			// across it.
			pending = ""
			continue
		}

		c.Doc = pending
		pending = ""
		c.Visibility = entity.VisibilityPublic
		captures = append(captures, c)
	}
	return captures, nil
}

func sqlTableCapture(m *maskedUnit, st span, loc []int, declOff int) (Capture, bool) {
	paren := st.start + loc[1] - 1
	close := findBalanced(m.masked, paren)
	if close == -1 {
		return Capture{}, false
	}

	var params []entity.Param
	for _, part := range m.splitTopLevel(paren+1, close, false) {
		if col, ok := sqlColumn(part); ok {
			params = append(params, col)
		}
	}

	end := sqlSpanEnd(m.masked, st)
	return Capture{
		Kind:       entity.KindTable,
		Name:       sqlUnquote(m.src[st.start+loc[2] : st.start+loc[3]]),
		Parameters: params,
		StartLine:  m.lineAt(declOff),
		EndLine:    m.lineAt(end),
		SourceText: strings.TrimSpace(m.src[declOff : end+1]),
	}, true
}

func sqlRoutineCapture(m *maskedUnit, st span, loc []int, declOff int, kind entity.Kind) (Capture, bool) {
	paren := st.start + loc[1] - 1
	close := findBalanced(m.masked, paren)
	if close == -1 {
		return Capture{}, false
	}

	var params []entity.Param
	for _, part := range m.splitTopLevel(paren+1, close, false) {
		if p, ok := sqlRoutineParam(part); ok {
			params = append(params, p)
		}
	}

	end := close
	retType := ""
	if kind == entity.KindSQLFunction {
		if rl := sqlReturnsRe.FindStringSubmatchIndex(m.masked[close+1 : st.end]); rl != nil {
			retType = strings.TrimSpace(m.src[close+1+rl[2] : close+1+rl[3]])
			end = close + rl[1]
		}
	}

	return Capture{
		Kind:       kind,
		Name:       sqlUnquote(m.src[st.start+loc[2] : st.start+loc[3]]),
		Parameters: params,
		ReturnType: retType,
		StartLine:  m.lineAt(declOff),
		EndLine:    m.lineAt(end),
		SourceText: strings.TrimSpace(m.src[declOff : end+1]),
	}, true
}

func sqlViewCapture(m *maskedUnit, st span, loc []int, declOff int) (Capture, bool) {
	queryStart := st.start + loc[1]
	queryEnd := sqlSpanEnd(m.masked, st)
	if m.masked[queryEnd] == ';' && queryEnd > queryStart {
		queryEnd--
	}
	query := strings.TrimSpace(m.src[queryStart : queryEnd+1])
	if query == "" {
		return Capture{}, false
	}

	return Capture{
		Kind:       entity.KindView,
		Name:       sqlUnquote(m.src[st.start+loc[2] : st.start+loc[3]]),
		StartLine:  m.lineAt(declOff),
		EndLine:    m.lineAt(queryEnd),
		SourceText: query,
	}, true
}

type span struct{ start, end int }

// sqlStatements splits the masked text into statement spans on semicolons
// outside parentheses. A span keeps its trailing semicolon.
func sqlStatements(masked string) []span {
	var spans []span
	depth := 0
	start := 0
	for i := 0; i < len(masked); i++ {
		switch masked[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ';':
			if depth == 0 {
				spans = append(spans, span{start: start, end: i + 1})
				start = i + 1
			}
		}
	}
	if start < len(masked) {
		spans = append(spans, span{start: start, end: len(masked)})
	}
	return spans
}

// sqlSpanEnd backs up over trailing whitespace (and blanked comments) to
// the last meaningful byte of a statement.
func sqlSpanEnd(masked string, st span) int {
	i := st.end - 1
	for i > st.start {
		switch masked[i] {
		case ' ', '\t', '\r', '\n':
			i--
		default:
			return i
		}
	}
	return i
}

// sqlCommentRuns joins adjacent -- lines into one span so a multi-line
// comment run attaches as a single documentation block.
func sqlCommentRuns(comments []commentSpan, src string) []commentSpan {
	var merged []commentSpan
	for _, c := range comments {
		if !c.block && len(merged) > 0 {
			last := &merged[len(merged)-1]
			if !last.block && strings.TrimSpace(src[last.end:c.start]) == "" {
				last.text += "\n" + c.text
				last.end = c.end
				continue
			}
		}
		merged = append(merged, c)
	}
	return merged
}

func sqlColumn(part string) (entity.Param, bool) {
	tokens := sqlTokens(part)
	if len(tokens) < 2 {
		return entity.Param{}, false
	}
	if sqlConstraintWords[strings.ToUpper(tokens[0])] {
		return entity.Param{}, false
	}

	p := entity.Param{Name: sqlUnquote(tokens[0])}
	i := 1
	var typeTokens []string
	for ; i < len(tokens); i++ {
		if sqlColumnModifiers[strings.ToUpper(tokens[i])] {
			break
		}
		typeTokens = append(typeTokens, tokens[i])
	}
	p.DeclaredType = strings.Join(typeTokens, " ")

	for ; i < len(tokens); i++ {
		switch strings.ToUpper(tokens[i]) {
		case "NOT":
			if i+1 < len(tokens) && strings.EqualFold(tokens[i+1], "NULL") {
				p.NotNull = true
				i++
			}
		case "DEFAULT":
			if i+1 < len(tokens) {
				p.Default = tokens[i+1]
				i++
			}
		}
	}
	return p, true
}

func sqlRoutineParam(part string) (entity.Param, bool) {
	tokens := sqlTokens(part)
	if len(tokens) == 0 {
		return entity.Param{}, false
	}

	p := entity.Param{Direction: entity.DirectionIn}
	switch strings.ToUpper(tokens[0]) {
	case "IN":
		tokens = tokens[1:]
	case "OUT":
		p.Direction = entity.DirectionOut
		tokens = tokens[1:]
	case "INOUT":
		p.Direction = entity.DirectionInOut
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return entity.Param{}, false
	}

	p.Name = sqlUnquote(tokens[0])
	var typeTokens []string
	for i := 1; i < len(tokens); i++ {
		if strings.EqualFold(tokens[i], "DEFAULT") {
			if i+1 < len(tokens) {
				p.Default = tokens[i+1]
			}
			break
		}
		typeTokens = append(typeTokens, tokens[i])
	}
	p.DeclaredType = strings.Join(typeTokens, " ")
	return p, true
}

// sqlTokens splits one definition line on whitespace outside parentheses
// and quotes, keeping parenthesized type arguments with their type.
func sqlTokens(part string) []string {
	var tokens []string
	depth := 0
	var quote byte
	start := -1
	for i := 0; i < len(part); i++ {
		c := part[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			if start == -1 {
				start = i
			}
		case c == '(':
			depth++
			if start == -1 {
				start = i
			}
		case c == ')':
			depth--
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			if depth == 0 && start != -1 {
				tokens = append(tokens, part[start:i])
				start = -1
			}
		default:
			if start == -1 {
				start = i
			}
		}
	}
	if start != -1 {
		tokens = append(tokens, part[start:])
	}
	return tokens
}

func sqlUnquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '`' && s[len(s)-1] == '`') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
