package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lumendocs/lumen/internal/entity"
)

// javaExtractor extends the brace-language scan with typed captures:
// visibility modifiers, declared return types, parameter types, and throws
// clauses. Constructors carry no return-type token and are skipped.
type javaExtractor struct{}

var (
	javaClassRe = regexp.MustCompile(`(?m)^[ \t]*((?:(?:public|private|protected|static|final|abstract|strictfp)\s+)*)(?:class|interface)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)

	// modifiers, return type (dotted, generic, array), name, open paren.
	javaMethodRe = regexp.MustCompile(`(?m)^[ \t]*((?:(?:public|private|protected|static|final|abstract|synchronized|native|default|strictfp)\s+)*)([A-Za-z_$][A-Za-z0-9_$.]*(?:<[^;{()=]*>)?(?:\[\])*)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`)
)

var javaReserved = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "new": true, "else": true, "do": true, "try": true,
	"throw": true, "assert": true,
	// A constructor match backtracks its modifier into the return-type slot.
	"public": true, "private": true, "protected": true, "static": true,
	"final": true, "abstract": true, "synchronized": true, "native": true,
	"default": true, "strictfp": true,
}

func (javaExtractor) Language() entity.Language { return entity.LangJava }

func (javaExtractor) Extract(src string) ([]Capture, error) {
	m := maskCLike(src, false)

	type decl struct {
		off       int
		cap       Capture
		parentRec int
		selfRec   int
	}

	type classRange struct{ open, close int }

	var decls []decl
	var ranges []classRange

	for _, loc := range javaClassRe.FindAllStringSubmatchIndex(m.masked, -1) {
		nameStart, nameEnd := loc[4], loc[5]
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
				Visibility: javaVisibility(m.src[loc[2]:loc[3]]),
			},
			selfRec: len(ranges),
		})
	}

	for ri, r := range ranges {
		seg := m.masked[r.open+1 : r.close]
		for _, loc := range javaMethodRe.FindAllStringSubmatchIndex(seg, -1) {
			off := r.open + 1 + loc[0]
			if depthBetween(m.masked, r.open+1, off) != 0 {
				continue
			}
			name := m.src[r.open+1+loc[6] : r.open+1+loc[7]]
			retType := m.src[r.open+1+loc[4] : r.open+1+loc[5]]
			if javaReserved[name] || javaReserved[retType] {
				continue
			}
			paren := r.open + 1 + loc[1] - 1
			pClose := findBalanced(m.masked, paren)
			if pClose == -1 {
				continue
			}

			end, throws := javaMethodTail(&m, pClose+1)
			if end == -1 {
				continue
			}

			decls = append(decls, decl{
				off: off,
				cap: Capture{
					Kind:       entity.KindMethod,
					Name:       name,
					Parameters: javaParams(&m, paren+1, pClose),
					ReturnType: retType,
					StartLine:  m.lineAt(off),
					EndLine:    m.lineAt(end),
					SourceText: strings.TrimSpace(m.src[off : end+1]),
					Visibility: javaVisibility(m.src[r.open+1+loc[2] : r.open+1+loc[3]]),
					Doc:        throws,
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
		// throws suffix was staged in Doc; the comment text goes first.
		suffix := c.Doc
		c.Doc = docs[d.off]
		if suffix != "" {
			if c.Doc != "" {
				c.Doc += "\n"
			}
			c.Doc += suffix
		}
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

// javaMethodTail scans past an optional throws clause to the method body or
// terminating semicolon. It returns the end offset of the declaration and
// the formatted throws suffix, or -1 when neither a body nor a semicolon
// follows.
func javaMethodTail(m *maskedUnit, from int) (int, string) {
	p := skipSpace(m.masked, from)
	throws := ""
	if strings.HasPrefix(m.masked[p:], "throws") {
		tEnd := strings.IndexAny(m.masked[p:], "{;")
		if tEnd == -1 {
			return -1, ""
		}
		tEnd += p
		names := m.splitTopLevel(p+len("throws"), tEnd, true)
		if len(names) > 0 {
			throws = "Throws: " + strings.Join(names, ", ")
		}
		p = tEnd
	}
	if p >= len(m.masked) {
		return -1, ""
	}
	switch m.masked[p] {
	case '{':
		end := findBalanced(m.masked, p)
		if end == -1 {
			return -1, ""
		}
		return end, throws
	case ';':
		return p, throws
	}
	return -1, ""
}

func javaParams(m *maskedUnit, start, end int) []entity.Param {
	var params []entity.Param
	for _, part := range m.splitTopLevel(start, end, true) {
		if p := javaParam(part); p.Name != "" {
			params = append(params, p)
		}
	}
	return params
}

// javaParam reads a `Type name` pair. Annotations and final are dropped
// from the type; the last token is the name.
func javaParam(part string) entity.Param {
	fields := strings.Fields(part)
	typed := fields[:0]
	for _, f := range fields {
		if f == "final" || strings.HasPrefix(f, "@") {
			continue
		}
		typed = append(typed, f)
	}
	if len(typed) == 0 {
		return entity.Param{}
	}
	if len(typed) == 1 {
		return entity.Param{Name: typed[0]}
	}

	name := typed[len(typed)-1]
	declType := strings.Join(typed[:len(typed)-1], " ")
	if strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
		declType += "[]"
	}
	return entity.Param{Name: name, DeclaredType: declType}
}

func javaVisibility(modifiers string) entity.Visibility {
	switch {
	case strings.Contains(modifiers, "public"):
		return entity.VisibilityPublic
	case strings.Contains(modifiers, "private"):
		return entity.VisibilityPrivate
	case strings.Contains(modifiers, "protected"):
		return entity.VisibilityProtected
	}
	return ""
}
