package web

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/jaminalder/codex-pyramid-solitaire/internal/app"
	"github.com/jaminalder/codex-pyramid-solitaire/internal/domain"
)

type templates struct {
	base  *template.Template
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	// Minimal inline templates; can be replaced by file loading later.
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Pyramid Solitaire</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>Pyramid Solitaire</h1>
<form action="/game" method="post">
  <label>Seed <input type="text" name="seed" placeholder="random"></label>
  <label>Redeals <input type="number" name="redeals" min="0" value="{{.DefaultRedeals}}"></label>
  <button>Deal</button>
</form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="board" hx-sse="swap:board">{{.BoardHTML}}</div>
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board">
  {{if .Snap.Status}}<div class="status">{{.Snap.Status}}</div>{{end}}
  {{if .Snap.Won}}<div class="banner win">You cleared the pyramid!</div>
  {{else if .Snap.Lost}}<div class="banner lose">No more moves. You lose.</div>{{end}}
  <div class="hud">Stock: {{.Snap.StockCount}} | Waste: {{.WasteLabel}} | Removed: {{.Snap.Removed}}/28 | Redeals: {{.Snap.RedealsUsed}}/{{.Snap.MaxRedeals}} | Seed: {{.SeedLabel}}</div>
  {{range .Rows}}
  <div class="row">
    {{range .}}
      {{if .Present}}
      <form hx-post="/game/{{$.ID}}/click" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="kind" value="pyramid">
        <input type="hidden" name="row" value="{{.Row}}">
        <input type="hidden" name="col" value="{{.Col}}">
        <button type="submit" class="card{{if .Exposed}} exposed{{end}}{{if .Selected}} selected{{end}}">{{.Card}}</button>
      </form>
      {{else}}<span class="card gone"></span>{{end}}
    {{end}}
  </div>
  {{end}}
  <div class="piles">
    <form hx-post="/game/{{.ID}}/stock" hx-target="#board" hx-swap="outerHTML" method="post">
      <button type="submit" class="stock">Stock ({{.Snap.StockCount}})</button>
    </form>
    {{if .Snap.HasWaste}}
    <form hx-post="/game/{{.ID}}/click" hx-target="#board" hx-swap="outerHTML" method="post">
      <input type="hidden" name="kind" value="waste">
      <input type="hidden" name="index" value="{{.Snap.WasteIndex}}">
      <button type="submit" class="waste{{if .WasteSelected}} selected{{end}}">{{.Snap.WasteCard}}</button>
    </form>
    {{else}}<span class="waste empty">Waste empty</span>{{end}}
  </div>
  <div class="actions">
    <form hx-post="/game/{{.ID}}/undo" hx-target="#board" hx-swap="outerHTML" method="post"><button>Undo</button></form>
    <form hx-post="/game/{{.ID}}/redeal" hx-target="#board" hx-swap="outerHTML" method="post"><button>Redeal</button></form>
    <form hx-post="/game/{{.ID}}/new" hx-target="#board" hx-swap="outerHTML" method="post"><button>New Game</button></form>
  </div>
</div>
`

// boardData is the board template's view of a snapshot, with the flat cell
// list regrouped into pyramid rows.
type boardData struct {
	ID            string
	Rows          [][]app.CellView
	Snap          app.Snapshot
	WasteLabel    string
	SeedLabel     string
	WasteSelected bool
}

func newBoardData(snap app.Snapshot) boardData {
	data := boardData{
		ID:         snap.ID,
		Snap:       snap,
		WasteLabel: "-",
		SeedLabel:  "random",
	}
	if snap.HasWaste {
		data.WasteLabel = snap.WasteCard.String()
	}
	if snap.HasSeed {
		data.SeedLabel = strconv.FormatInt(snap.Seed, 10)
	}
	if snap.Selected != nil && snap.Selected.Kind == domain.WasteCard {
		data.WasteSelected = true
	}
	row := make([]app.CellView, 0, 7)
	for _, cell := range snap.Cells {
		row = append(row, cell)
		if cell.Col == cell.Row {
			data.Rows = append(data.Rows, row)
			row = make([]app.CellView, 0, 7)
		}
	}
	return data
}
