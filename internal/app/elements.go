package app

import (
	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/editor"
	"github.com/dshills/imagenode/internal/imageelem"
	"github.com/dshills/imagenode/internal/renderer"
)

// onUpdate keeps elements and the modified flag in step with the tree.
func (app *Application) onUpdate(ev editor.UpdateEvent) {
	if ev.TreeVersion == app.lastVersion {
		return
	}
	app.lastVersion = ev.TreeVersion
	app.doc.SetModified(true)
	app.syncElements()
}

// syncElements mounts an element for each new image node and unmounts the
// elements of removed ones.
func (app *Application) syncElements() {
	present := make(map[document.NodeKey]bool)
	for _, img := range app.editor.Tree().Images() {
		key := img.Key()
		present[key] = true
		if _, ok := app.elements[key]; ok {
			continue
		}
		el := imageelem.New(app.editor, app.gate, imageelem.PropsFromNode(img), app.elementOptions()...)
		el.Mount()
		app.elements[key] = el
	}
	for key, el := range app.elements {
		if present[key] {
			continue
		}
		el.Unmount()
		delete(app.elements, key)
		app.log.Debug("element removed", zap.String("key", string(key)))
	}
}

func (app *Application) elementOptions() []imageelem.Option {
	opts := []imageelem.Option{
		imageelem.WithLogger(app.log.Named("image")),
		imageelem.WithSettleDelay(app.cfg.Element.SettleDelay),
		imageelem.WithPriority(editor.ParsePriority(app.cfg.Element.CommandPriority)),
	}
	if app.opts.Clock != nil {
		opts = append(opts, imageelem.WithClock(app.opts.Clock))
	}
	return opts
}

// blocks returns the document in drawing order.
func (app *Application) blocks() []renderer.Block {
	nodes := app.editor.Tree().Nodes()
	blocks := make([]renderer.Block, 0, len(nodes))
	for _, node := range nodes {
		switch n := node.(type) {
		case *document.ParagraphNode:
			blocks = append(blocks, renderer.Block{Key: n.Key(), Text: n.Text()})
		case *document.ImageNode:
			el, ok := app.elements[n.Key()]
			if !ok {
				continue
			}
			v := el.Render()
			blocks = append(blocks, renderer.Block{Key: n.Key(), View: &v})
		}
	}
	return blocks
}
