package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lumendocs/lumen/internal/entity"
)

// javascriptExtractor recognizes a fixed set of declaration shapes with
// regular expressions over masked source. It is best-effort: constructs it
// does not positively recognize are skipped, and it never fails a unit.
type javascriptExtractor struct{}

var (
	jsClassRe    = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	jsFunctionRe = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`)
	jsArrowRe    = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(?:async\s+)?`)
	jsMethodRe   = regexp.MustCompile(`(?m)^[ \t]*(?:static\s+)?(?:async\s+)?(?:get\s+|set\s+)?\*?\s*([A-Za-z_$#][A-Za-z0-9_$]*)\s*\(`)
)

// Statement keywords that would otherwise satisfy the method shape when a
// class body contains unexpected content.
var jsReserved = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "function": true, "new": true, "typeof": true,
	"delete": true, "do": true, "else": true, "try": true, "finally": true,
}

func (javascriptExtractor) Language() entity.Language { return entity.LangJavaScript }

func (javascriptExtractor) Extract(src string) ([]Capture, error) {
	m := maskCLike(src, true)

	// decl is one recognized declaration before ordering. parentRec and
	// selfRec refer to positions in the class range list, 1-based.
	type decl struct {
		off       int
		cap       Capture
		parentRec int
		selfRec   int
	}

	type classRange struct{ open, close int }

	var decls []decl
	var ranges []classRange

	for _, loc := range jsClassRe.FindAllStringSubmatchIndex(m.masked, -1) {
		nameStart, nameEnd := loc[2], loc[3]
		open := strings.IndexByte(m.masked[nameEnd:], '{')
		if open == -1 {
			continue
		}
		open += nameEnd
		close := findBalanced(m.masked, open)
		if close == -1 {
			close = len(m.masked) - 1
		}
		ranges = append(ranges, classRange{open: open, close: close})
		decls = append(decls, decl{
			off: loc[0],
			cap: Capture{
				Kind:       entity.KindClass,
				Name:       m.src[nameStart:nameEnd],
				StartLine:  m.lineAt(loc[0]),
				EndLine:    m.lineAt(close),
				SourceText: strings.TrimSpace(m.src[loc[0] : close+1]),
			},
			selfRec: len(ranges),
		})
	}

	for _, loc := range jsFunctionRe.FindAllStringSubmatchIndex(m.masked, -1) {
		paren := loc[1] - 1
		pClose := findBalanced(m.masked, paren)
		if pClose == -1 {
			continue
		}
		end := pClose
		if body := skipSpace(m.masked, pClose+1); body < len(m.masked) && m.masked[body] == '{' {
			if bc := findBalanced(m.masked, body); bc != -1 {
				end = bc
			}
		}
		decls = append(decls, decl{
			off: loc[0],
			cap: Capture{
				Kind:       entity.KindFunction,
				Name:       m.src[loc[2]:loc[3]],
				Parameters: jsParams(&m, paren+1, pClose),
				StartLine:  m.lineAt(loc[0]),
				EndLine:    m.lineAt(end),
				SourceText: strings.TrimSpace(m.src[loc[0] : end+1]),
			},
		})
	}

	for _, loc := range jsArrowRe.FindAllStringSubmatchIndex(m.masked, -1) {
		p := skipSpace(m.masked, loc[1])
		var params []entity.Param
		if p < len(m.masked) && m.masked[p] == '(' {
			pClose := findBalanced(m.masked, p)
			if pClose == -1 {
				continue
			}
			arrow := skipSpace(m.masked, pClose+1)
			if !strings.HasPrefix(m.masked[arrow:], "=>") {
				continue
			}
			params = jsParams(&m, p+1, pClose)
			p = arrow
		} else {
			j := p
			for j < len(m.masked) && isIdentChar(m.masked[j]) {
				j++
			}
			if j == p {
				continue
			}
			arrow := skipSpace(m.masked, j)
			if !strings.HasPrefix(m.masked[arrow:], "=>") {
				continue
			}
			params = []entity.Param{{Name: m.src[p:j]}}
			p = arrow
		}

		end := len(m.masked) - 1
		if body := skipSpace(m.masked, p+2); body < len(m.masked) {
			if m.masked[body] == '{' {
				if bc := findBalanced(m.masked, body); bc != -1 {
					end = bc
				}
			} else {
				end = jsExprEnd(m.masked, body)
			}
		}
		decls = append(decls, decl{
			off: loc[0],
			cap: Capture{
				Kind:       entity.KindFunction,
				Name:       m.src[loc[2]:loc[3]],
				Parameters: params,
				StartLine:  m.lineAt(loc[0]),
				EndLine:    m.lineAt(end),
				SourceText: strings.TrimSpace(m.src[loc[0] : end+1]),
			},
		})
	}

	for ri, r := range ranges {
		seg := m.masked[r.open+1 : r.close]
		for _, loc := range jsMethodRe.FindAllStringSubmatchIndex(seg, -1) {
			off := r.open + 1 + loc[0]
			if depthBetween(m.masked, r.open+1, off) != 0 {
				continue
			}
			name := m.src[r.open+1+loc[2] : r.open+1+loc[3]]
			if jsReserved[name] {
				continue
			}
			paren := r.open + 1 + loc[1] - 1
			pClose := findBalanced(m.masked, paren)
			if pClose == -1 {
				continue
			}
			body := skipSpace(m.masked, pClose+1)
			if body >= len(m.masked) || m.masked[body] != '{' {
				continue
			}
			bodyClose := findBalanced(m.masked, body)
			if bodyClose == -1 {
				continue
			}
			decls = append(decls, decl{
				off: off,
				cap: Capture{
					Kind:       entity.KindMethod,
					Name:       name,
					Parameters: jsParams(&m, paren+1, pClose),
					StartLine:  m.lineAt(off),
					EndLine:    m.lineAt(bodyClose),
					SourceText: strings.TrimSpace(m.src[off : bodyClose+1]),
				},
				parentRec: ri + 1,
			})
		}
	}

	sort.Slice(decls, func(i, j int) bool { return decls[i].off < decls[j].off })

	offsets := make([]int, len(decls))
	for i, d := range decls {
		offsets[i] = d.off
	}
	docs := attachDocs(m.comments, offsets)

	classPos := make(map[int]int, len(ranges))
	captures := make([]Capture, 0, len(decls))
	for _, d := range decls {
		c := d.cap
		c.Doc = docs[d.off]
		if d.selfRec > 0 {
			classPos[d.selfRec] = len(captures) + 1
		}
		if d.parentRec > 0 {
			c.Parent = classPos[d.parentRec]
		}
		captures = append(captures, c)
	}
	return captures, nil
}

func jsParams(m *maskedUnit, start, end int) []entity.Param {
	var params []entity.Param
	for _, part := range m.splitTopLevel(start, end, false) {
		if p := jsParam(part); p.Name != "" {
			params = append(params, p)
		}
	}
	return params
}

// jsParam splits one raw parameter into name and default value. The default
// begins at the first top-level = that is not part of => or a comparison.
func jsParam(part string) entity.Param {
	depth := 0
	var quote byte
	for i := 0; i < len(part); i++ {
		c := part[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(part) && (part[i+1] == '>' || part[i+1] == '=') {
				i++
				continue
			}
			if i > 0 && strings.IndexByte("!<>=", part[i-1]) != -1 {
				continue
			}
			return entity.Param{
				Name:    strings.TrimPrefix(strings.TrimSpace(part[:i]), "..."),
				Default: strings.TrimSpace(part[i+1:]),
			}
		}
	}
	return entity.Param{Name: strings.TrimPrefix(strings.TrimSpace(part), "...")}
}

// jsExprEnd finds the last offset of an expression-bodied arrow: the
// terminating semicolon, or the offset before a top-level newline or the
// closing delimiter of an enclosing scope.
func jsExprEnd(masked string, from int) int {
	depth := 0
	for i := from; i < len(masked); i++ {
		switch masked[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return i - 1
			}
		case ';':
			if depth == 0 {
				return i
			}
		case '\n':
			if depth == 0 {
				return i - 1
			}
		}
	}
	return len(masked) - 1
}
