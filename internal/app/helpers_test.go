package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap/zaptest"

	"github.com/dshills/imagenode/internal/config"
	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/loadgate"
	"github.com/dshills/imagenode/internal/renderer/backend"
)

var errBroken = errors.New("broken image")

// testFetcher serves a 400x200 image for every source except "bad.png".
func testFetcher() loadgate.Fetcher {
	return loadgate.FetcherFunc(func(_ context.Context, src string) (*loadgate.Image, error) {
		if src == "bad.png" {
			return nil, errBroken
		}
		img := image.NewNRGBA(image.Rect(0, 0, 400, 200))
		for y := 0; y < 200; y++ {
			for x := 0; x < 400; x++ {
				img.Set(x, y, color.NRGBA{R: 200, A: 255})
			}
		}
		return loadgate.NewImage(src, "png", img, 1024), nil
	})
}

func imageNode(key, src string, w, h document.Dimension) *document.ImageNode {
	return document.NewImageNodeWithKey(document.NodeKey(key), document.ImageAttrs{
		Src:       src,
		AltText:   "alt " + key,
		Width:     w,
		Height:    h,
		MaxWidth:  500,
		Resizable: true,
	})
}

// testTree holds paragraph "p", image "a" (200x100) and image "b" (120x60).
func testTree(t *testing.T) *document.Tree {
	t.Helper()
	tree := document.NewTree()
	nodes := []document.Node{
		document.NewParagraphNodeWithKey("p", "Intro"),
		imageNode("a", "a.png", document.Pixels(200), document.Pixels(100)),
		imageNode("b", "b.png", document.Pixels(120), document.Pixels(60)),
	}
	for _, n := range nodes {
		if err := tree.Insert(n); err != nil {
			t.Fatal(err)
		}
	}
	return tree
}

func newTestApp(t *testing.T, doc *Document, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Defaults()
	cfg.Element.SettleDelay = time.Hour
	if mutate != nil {
		mutate(&cfg)
	}
	app, err := New(Options{
		Document: doc,
		Config:   &cfg,
		Logger:   zaptest.NewLogger(t),
		Fetcher:  testFetcher(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// attachScreen gives app an initialized 80x25 simulation screen.
func attachScreen(t *testing.T, app *Application) *backend.Terminal {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	term := backend.NewTerminalWithScreen(sim)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sim.SetSize(80, 25)
	t.Cleanup(term.Shutdown)
	if err := app.SetBackend(term); err != nil {
		t.Fatalf("SetBackend: %v", err)
	}
	return term
}

// loadAll waits for every image and applies the results.
func loadAll(t *testing.T, app *Application) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, img := range app.editor.Tree().Images() {
		_, _ = app.gate.Wait(ctx, img.Src())
	}
	app.editor.RunPending()
	app.render()
}

func mouseAt(x, y int, buttons backend.ButtonMask, mods backend.ModMask) backend.Event {
	return backend.Event{Type: backend.EventMouse, MouseX: x, MouseY: y, Buttons: buttons, Mod: mods}
}

func key(k backend.Key) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: k}
}

func send(t *testing.T, app *Application, evs ...backend.Event) {
	t.Helper()
	for _, ev := range evs {
		if err := app.handleBackendEvent(ev); err != nil {
			t.Fatalf("handleBackendEvent(%+v) = %v", ev, err)
		}
	}
	app.render()
}

func clickAt(t *testing.T, app *Application, x, y int, mods backend.ModMask) {
	t.Helper()
	send(t, app,
		mouseAt(x, y, backend.ButtonPrimary, mods),
		mouseAt(x, y, backend.ButtonNone, mods))
}

// imageCell returns a cell inside the image of key.
func imageCell(t *testing.T, app *Application, key document.NodeKey) (int, int) {
	t.Helper()
	box, ok := app.Renderer().Box(key)
	if !ok {
		t.Fatalf("no box for %s", key)
	}
	return box.Content.Left + 1, box.Content.Top + 1
}
