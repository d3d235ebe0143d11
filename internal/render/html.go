package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/lumendocs/lumen/internal/entity"
)

// HTML renders the split-screen report: a unit-grouped navigation panel with
// client-side filtering on the left, per-entity details on the right. The
// page is self-contained; no external assets.
func HTML(w io.Writer, corpus *entity.Corpus, title string) error {
	if title == "" {
		title = "Code Documentation"
	}

	stats := Collect(corpus)
	groups := groupByUnit(corpus)
	data := reportData{
		Title: title,
		Subtitle: fmt.Sprintf("%d entities in %d units, %.0f%% documented, about %s of reading saved",
			stats.Total, len(groups), stats.Coverage, stats.TimeSaved()),
		Groups: groups,
	}
	return reportTemplate.Execute(w, data)
}

type reportData struct {
	Title    string
	Subtitle string
	Groups   []groupView
}

type groupView struct {
	Unit     string
	Entities []entityView
}

type entityView struct {
	ID            string
	Name          string
	Kind          string
	Language      string
	Unit          string
	Lines         string
	Visibility    string // empty when unspecified
	Documentation string
	ReturnType    string
	UsageExample  string
	SourceText    string
	Parameters    []paramView
}

type paramView struct {
	Name   string
	Type   string
	Detail string
}

func groupByUnit(corpus *entity.Corpus) []groupView {
	byUnit := make(map[string][]entityView)
	for i := 0; i < corpus.Len(); i++ {
		e := corpus.At(i)
		byUnit[e.Unit] = append(byUnit[e.Unit], viewOf(e))
	}

	units := corpus.Units()
	groups := make([]groupView, 0, len(units))
	for _, unit := range units {
		groups = append(groups, groupView{Unit: unit, Entities: byUnit[unit]})
	}
	return groups
}

func viewOf(e *entity.Entity) entityView {
	view := entityView{
		ID:            e.ID,
		Name:          e.Name,
		Kind:          string(e.Kind),
		Language:      string(e.Language),
		Unit:          e.Unit,
		Lines:         fmt.Sprintf("lines %d-%d", e.Span.StartLine, e.Span.EndLine),
		Documentation: e.Documentation,
		ReturnType:    e.ReturnType,
		UsageExample:  e.UsageExample,
		SourceText:    e.SourceText,
	}
	if e.Visibility != entity.VisibilityUnspecified {
		view.Visibility = string(e.Visibility)
	}
	for _, p := range e.Parameters {
		view.Parameters = append(view.Parameters, paramView{
			Name:   p.Name,
			Type:   p.DeclaredType,
			Detail: paramDetail(p),
		})
	}
	return view
}

func paramDetail(p entity.Param) string {
	var parts []string
	if p.Direction != "" {
		parts = append(parts, string(p.Direction))
	}
	if p.NotNull {
		parts = append(parts, "NOT NULL")
	}
	if p.Default != "" {
		parts = append(parts, "default "+p.Default)
	}
	return strings.Join(parts, ", ")
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: "Segoe UI", Tahoma, sans-serif; height: 100vh; overflow: hidden; }
.container { display: flex; height: 100vh; }
.nav { width: 340px; background: #f6f7f9; border-right: 1px solid #d9dce1; overflow-y: auto; }
.nav header { background: #4f5b93; color: #fff; padding: 18px; }
.nav header h1 { font-size: 20px; }
.nav header p { font-size: 12px; opacity: 0.85; margin-top: 4px; }
.search { padding: 12px; background: #fff; border-bottom: 1px solid #d9dce1; }
.search input { width: 100%; padding: 8px; border: 1px solid #c6cad2; border-radius: 6px; font-size: 14px; }
.group-header { padding: 10px 14px; font-weight: 600; font-size: 13px; color: #3a4160; background: #e6e9f2; margin-top: 8px; display: flex; }
.group-header .count { margin-left: auto; background: #4f5b93; color: #fff; border-radius: 10px; padding: 0 8px; font-size: 11px; line-height: 18px; }
.item { padding: 9px 14px; cursor: pointer; font-size: 13px; border-bottom: 1px solid #eef0f4; display: flex; gap: 8px; align-items: center; }
.item:hover { background: #eef0f8; }
.item.active { background: #4f5b93; color: #fff; }
.item .badge { font-size: 10px; text-transform: uppercase; background: #8a93c4; color: #fff; border-radius: 4px; padding: 1px 6px; }
.item .name { font-family: "Courier New", monospace; }
.main { flex: 1; overflow-y: auto; padding: 28px; }
.detail { display: none; }
.detail.active { display: block; }
.detail h2 { font-family: "Courier New", monospace; font-size: 24px; margin-bottom: 8px; }
.badges span { display: inline-block; background: #4f5b93; color: #fff; border-radius: 4px; font-size: 11px; text-transform: uppercase; padding: 2px 8px; margin-right: 6px; }
.meta { color: #5a6270; font-size: 13px; margin: 10px 0 18px; }
.block { margin-bottom: 20px; }
.block h3 { font-size: 14px; color: #3a4160; margin-bottom: 6px; }
table.params { border-collapse: collapse; font-size: 13px; }
table.params th, table.params td { border: 1px solid #d9dce1; padding: 5px 10px; text-align: left; }
pre { background: #272b33; color: #e8eaf0; padding: 14px; border-radius: 8px; overflow-x: auto; font-size: 13px; }
.empty { color: #8a90a0; font-style: italic; }
</style>
</head>
<body>
<div class="container">
<nav class="nav">
<header>
<h1>{{.Title}}</h1>
<p>{{.Subtitle}}</p>
</header>
<div class="search"><input id="filter" type="text" placeholder="Filter entities..."></div>
{{range .Groups}}
<div class="group">
<div class="group-header">{{.Unit}}<span class="count">{{len .Entities}}</span></div>
{{range .Entities}}
<div class="item" data-detail="detail-{{.ID}}">
<span class="badge">{{.Kind}}</span><span class="name">{{.Name}}</span>
</div>
{{end}}
</div>
{{end}}
</nav>
<main class="main">
{{range .Groups}}{{range .Entities}}
<section class="detail" id="detail-{{.ID}}">
<h2>{{.Name}}</h2>
<p class="badges"><span>{{.Kind}}</span><span>{{.Language}}</span>{{if .Visibility}}<span>{{.Visibility}}</span>{{end}}</p>
<p class="meta">{{.Unit}}, {{.Lines}}</p>
<div class="block">
<h3>Documentation</h3>
{{if .Documentation}}<p>{{.Documentation}}</p>{{else}}<p class="empty">No documentation found.</p>{{end}}
</div>
{{if .Parameters}}
<div class="block">
<h3>Parameters</h3>
<table class="params">
<tr><th>Name</th><th>Type</th><th>Detail</th></tr>
{{range .Parameters}}<tr><td>{{.Name}}</td><td>{{.Type}}</td><td>{{.Detail}}</td></tr>
{{end}}</table>
</div>
{{end}}
{{if .ReturnType}}<div class="block"><h3>Returns</h3><p>{{.ReturnType}}</p></div>{{end}}
{{if .UsageExample}}<div class="block"><h3>Usage</h3><pre>{{.UsageExample}}</pre></div>{{end}}
{{if .SourceText}}<div class="block"><h3>Source</h3><pre>{{.SourceText}}</pre></div>{{end}}
</section>
{{end}}{{end}}
</main>
</div>
<script>
(function () {
  var items = Array.prototype.slice.call(document.querySelectorAll(".item"));
  var details = Array.prototype.slice.call(document.querySelectorAll(".detail"));

  function show(id) {
    details.forEach(function (d) { d.classList.toggle("active", d.id === id); });
    items.forEach(function (i) { i.classList.toggle("active", i.getAttribute("data-detail") === id); });
  }

  items.forEach(function (item) {
    item.addEventListener("click", function () { show(item.getAttribute("data-detail")); });
  });
  if (items.length > 0) { show(items[0].getAttribute("data-detail")); }

  document.getElementById("filter").addEventListener("input", function () {
    var needle = this.value.toLowerCase();
    items.forEach(function (item) {
      var match = item.textContent.toLowerCase().indexOf(needle) !== -1;
      item.style.display = match ? "" : "none";
    });
  });
})();
</script>
</body>
</html>
`))
