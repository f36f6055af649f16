package web

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"k8s.io/klog/v2"

	"github.com/jaminalder/codex-pyramid-solitaire/internal/app"
	"github.com/jaminalder/codex-pyramid-solitaire/internal/domain"
)

type handlers struct {
	svc            *app.Service
	tpl            *templates
	defaultRedeals int
}

func (h *handlers) renderBoard(snap app.Snapshot) []byte {
	return renderTemplate(h.tpl.board, "", newBoardData(snap))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	data := struct{ DefaultRedeals int }{DefaultRedeals: h.defaultRedeals}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.index, "", data))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	var seed *int64
	if s := strings.TrimSpace(r.Form.Get("seed")); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "seed must be an integer", http.StatusBadRequest)
			return
		}
		seed = &v
	}
	redeals := h.defaultRedeals
	if s := strings.TrimSpace(r.Form.Get("redeals")); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			http.Error(w, "redeals must be a non-negative integer", http.StatusBadRequest)
			return
		}
		redeals = v
	}
	snap, err := h.svc.CreateGame(seed, redeals)
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+snap.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	data := struct {
		ID        string
		BoardHTML template.HTML
	}{ID: snap.ID, BoardHTML: template.HTML(h.renderBoard(*snap))}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	// Render page with embedded board container
	_, _ = w.Write(renderTemplate(h.tpl.game, "", data))
}

func (h *handlers) click(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	var loc domain.Location
	switch r.Form.Get("kind") {
	case "waste":
		idx, _ := strconv.Atoi(r.Form.Get("index"))
		loc = domain.WasteLocation(idx)
	default:
		row, _ := strconv.Atoi(r.Form.Get("row"))
		col, _ := strconv.Atoi(r.Form.Get("col"))
		loc = domain.PyramidLocation(row, col)
	}
	snap, err := h.svc.Click(id, loc)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	klog.V(2).Infof("game %s click %s -> %q", id, loc, snap.Status)
	h.writeBoard(w, snap)
}

// action adapts a single-argument service command into a board-fragment
// handler for the stock/undo/redeal/new buttons.
func (h *handlers) action(cmd func(string) (*app.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		snap, err := cmd(id)
		if err != nil {
			if errors.Is(err, app.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "command failed", http.StatusInternalServerError)
			return
		}
		h.writeBoard(w, snap)
	}
}

func (h *handlers) writeBoard(w http.ResponseWriter, snap *app.Snapshot) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.renderBoard(*snap))
}

var heartbeatInterval = 15 * time.Second

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, _ := h.svc.Subscribe(ctx, id)
	// heartbeat ticker
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	// Initial flush of headers
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			// Emit board event
			_, _ = fmt.Fprintf(w, "event: board\n")
			_, _ = fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
		}
	}
}
