package imageelem

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/editor"
	"github.com/dshills/imagenode/internal/input"
	"github.com/dshills/imagenode/internal/loadgate"
	"github.com/dshills/imagenode/internal/selection"
)

// InheritHint is the intrinsic size hint used for an inherit dimension.
const InheritHint = 50

// Props are the inputs of an element.
type Props struct {
	Key         document.NodeKey
	Src         string
	AltText     string
	Width       document.Dimension
	Height      document.Dimension
	MaxWidth    int
	Resizable   bool
	Caption     string
	ShowCaption bool
}

// PropsFromNode builds props from the current attributes of node.
func PropsFromNode(node *document.ImageNode) Props {
	a := node.Attrs()
	return Props{
		Key:         node.Key(),
		Src:         a.Src,
		AltText:     a.AltText,
		Width:       a.Width,
		Height:      a.Height,
		MaxWidth:    a.MaxWidth,
		Resizable:   a.Resizable,
		Caption:     a.Caption,
		ShowCaption: a.ShowCaption,
	}
}

// Style is the box style of the rendered image.
type Style struct {
	Width    document.Dimension
	Height   document.Dimension
	MaxWidth int
}

// String formats the style as declarations, e.g.
// "width:200;height:inherit;max-width:500".
func (s Style) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "width:%s;height:%s", s.Width, s.Height)
	if s.MaxWidth > 0 {
		fmt.Fprintf(&b, ";max-width:%d", s.MaxWidth)
	}
	return b.String()
}

// View is the render output of an element.
type View struct {
	Key     document.NodeKey
	Load    loadgate.Status
	Image   *loadgate.Image
	Err     error
	AltText string
	Caption string

	Style      Style
	HintWidth  int
	HintHeight int

	Focused     bool
	Draggable   bool
	ShowResizer bool
	ClassName   string
}

// Visible returns false while the image is pending; the host draws nothing.
func (v View) Visible() bool {
	return v.Load != loadgate.StatusPending
}

func (v View) same(o View) bool {
	return v.Key == o.Key &&
		v.Load == o.Load &&
		v.Image == o.Image &&
		v.Err == o.Err &&
		v.AltText == o.AltText &&
		v.Caption == o.Caption &&
		v.Style == o.Style &&
		v.Focused == o.Focused &&
		v.Draggable == o.Draggable &&
		v.ShowResizer == o.ShowResizer
}

// Option configures an Element.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	clock       Clock
	settleDelay time.Duration
	priority    editor.Priority
}

// WithLogger sets the element logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithClock sets the clock used for the settle timer.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithSettleDelay sets the settle delay after a resize.
func WithSettleDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.settleDelay = d
		}
	}
}

// WithPriority sets the command priority.
func WithPriority(p editor.Priority) Option {
	return func(o *options) {
		o.priority = p
	}
}

// Element is an interactive image bound to one node.
type Element struct {
	ed    *editor.Editor
	gate  *loadgate.Gate
	log   *zap.Logger
	props Props

	bridge *SelectionBridge
	resize *ResizeController
	router *CommandRouter

	load       loadgate.Result
	cancelLoad func()
	teardown   func()
	mounted    bool

	onChange func(View)
	last     View
}

// New creates an unmounted element.
func New(ed *editor.Editor, gate *loadgate.Gate, props Props, opts ...Option) *Element {
	o := options{
		logger:      zap.NewNop(),
		clock:       SystemClock(),
		settleDelay: DefaultSettleDelay,
		priority:    editor.PriorityLow,
	}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With(zap.String("key", string(props.Key)))

	e := &Element{
		ed:    ed,
		gate:  gate,
		log:   log,
		props: props,
	}
	e.bridge = NewSelectionBridge(ed, props.Key)
	e.resize = NewResizeController(ed, props.Key, o.clock, o.settleDelay, log)
	e.resize.onChange = func(ResizeState) { e.refresh() }
	e.router = NewCommandRouter(e.bridge, e.resize, o.priority, log)
	return e
}

// Key returns the node key.
func (e *Element) Key() document.NodeKey {
	return e.props.Key
}

// Props returns the current props.
func (e *Element) Props() Props {
	return e.props
}

// Bridge returns the selection bridge.
func (e *Element) Bridge() *SelectionBridge {
	return e.bridge
}

// Resize returns the resize controller.
func (e *Element) Resize() *ResizeController {
	return e.resize
}

// Router returns the command router.
func (e *Element) Router() *CommandRouter {
	return e.router
}

// IsMounted returns true between Mount and Unmount.
func (e *Element) IsMounted() bool {
	return e.mounted
}

// OnChange sets the function called when the rendered view changes.
func (e *Element) OnChange(fn func(View)) {
	e.onChange = fn
}

// Mount registers commands and listeners and starts loading the image.
// Mounting a mounted element does nothing.
func (e *Element) Mount() {
	if e.mounted {
		return
	}
	e.mounted = true

	unregisterCommands := e.router.Register(e.ed)
	unregisterListener := e.ed.RegisterUpdateListener(e.onUpdate)
	e.subscribe()

	e.teardown = editor.MergeUnregister(
		unregisterCommands,
		unregisterListener,
		func() { e.unsubscribe() },
		e.resize.Stop,
	)
	e.last = e.Render()
	e.log.Debug("image element mounted", zap.String("src", e.props.Src))
}

// Unmount removes every handler, listener and load subscription.
func (e *Element) Unmount() {
	if !e.mounted {
		return
	}
	e.mounted = false
	if e.teardown != nil {
		e.teardown()
		e.teardown = nil
	}
	e.log.Debug("image element unmounted")
}

// SetProps replaces the props. A changed source restarts load gating.
func (e *Element) SetProps(p Props) {
	srcChanged := p.Src != e.props.Src
	e.props = p
	if srcChanged && e.mounted {
		e.unsubscribe()
		e.subscribe()
	}
	e.refresh()
}

// IsSelected returns true if the node is in the node selection.
func (e *Element) IsSelected() bool {
	return e.bridge.IsSelected()
}

// Resizing returns true while a resize is active or settling.
func (e *Element) Resizing() bool {
	return e.resize.Resizing()
}

// Focused is true while selected or resizing.
func (e *Element) Focused() bool {
	return e.IsSelected() || e.Resizing()
}

// Draggable is true while selected by a node selection and not resizing.
func (e *Element) Draggable() bool {
	return e.IsSelected() &&
		selection.Kind(e.ed.Selection()) == selection.VariantNode &&
		!e.Resizing()
}

// OnResizeStart is called by the resize handle when a drag begins.
func (e *Element) OnResizeStart() {
	e.resize.OnResizeStart()
}

// OnResizeEnd is called by the resize handle when a drag ends.
func (e *Element) OnResizeEnd(width, height document.Dimension, gesture input.GestureID) error {
	return e.resize.OnResizeEnd(width, height, gesture)
}

// MaxWidth returns the width bound for the resize handle.
func (e *Element) MaxWidth() int {
	return e.props.MaxWidth
}

// Surface returns the target of the rendered image.
func (e *Element) Surface() input.Target {
	return input.ImageSurface(e.props.Key)
}

// Render computes the current view.
func (e *Element) Render() View {
	p := e.props
	focused := e.Focused()
	draggable := e.Draggable()

	v := View{
		Key:     p.Key,
		Load:    e.load.Status,
		Image:   e.load.Image,
		Err:     e.load.Err,
		AltText: p.AltText,
		Style: Style{
			Width:    p.Width,
			Height:   p.Height,
			MaxWidth: p.MaxWidth,
		},
		HintWidth:   p.Width.Or(InheritHint),
		HintHeight:  p.Height.Or(InheritHint),
		Focused:     focused,
		Draggable:   draggable,
		ShowResizer: p.Resizable && focused && selection.Kind(e.ed.Selection()) == selection.VariantNode,
	}
	if p.ShowCaption {
		v.Caption = p.Caption
	}
	switch {
	case focused && draggable:
		v.ClassName = "focused draggable"
	case focused:
		v.ClassName = "focused"
	}
	return v
}

// refresh re-renders and reports a changed view.
func (e *Element) refresh() {
	if !e.mounted {
		return
	}
	v := e.Render()
	if v.same(e.last) {
		return
	}
	e.last = v
	if e.onChange != nil {
		e.onChange(v)
	}
}

// onUpdate syncs props from the node after each editor transaction.
func (e *Element) onUpdate(editor.UpdateEvent) {
	if img := document.AsImageNode(e.ed.GetNodeByKey(e.props.Key)); img != nil {
		p := PropsFromNode(img)
		if p != e.props {
			e.SetProps(p)
			return
		}
	}
	e.refresh()
}

func (e *Element) subscribe() {
	src := e.props.Src
	e.load = e.gate.Ensure(src)
	if e.load.Status != loadgate.StatusPending {
		return
	}
	e.cancelLoad = e.gate.Subscribe(src, func(res loadgate.Result) {
		e.ed.Post(func() {
			if !e.mounted || e.props.Src != src {
				return
			}
			e.load = res
			if res.Status == loadgate.StatusFailed {
				e.log.Warn("image unavailable", zap.String("src", src), zap.Error(res.Err))
			}
			e.refresh()
		})
	})
}

func (e *Element) unsubscribe() {
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
}
