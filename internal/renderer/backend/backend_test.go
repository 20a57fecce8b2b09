package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/imagenode/internal/renderer/core"
)

func newSimTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	term := NewTerminalWithScreen(sim)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	sim.SetSize(w, h)
	t.Cleanup(term.Shutdown)
	return term, sim
}

func TestTerminalSize(t *testing.T) {
	term, _ := newSimTerminal(t, 40, 12)
	w, h := term.Size()
	if w != 40 || h != 12 {
		t.Errorf("expected size (40, 12), got (%d, %d)", w, h)
	}
}

func TestTerminalSetGetCell(t *testing.T) {
	term, _ := newSimTerminal(t, 20, 10)

	style := core.NewStyle(core.ColorFromRGB(200, 10, 10)).WithBackground(core.ColorFromRGB(0, 0, 64)).Bold()
	term.SetCell(3, 4, core.NewStyledCell('X', style))

	got := term.GetCell(3, 4)
	if got.Rune != 'X' {
		t.Errorf("rune = %q, want 'X'", got.Rune)
	}
	if got.Style != style {
		t.Errorf("style = %+v, want %+v", got.Style, style)
	}

	if got := term.GetCell(-1, 0); got != core.EmptyCell() {
		t.Error("out of bounds should return empty cell")
	}
	if got := term.GetCell(20, 0); got != core.EmptyCell() {
		t.Error("out of bounds should return empty cell")
	}
}

func TestTerminalFillClear(t *testing.T) {
	term, _ := newSimTerminal(t, 20, 10)

	term.Fill(core.RectXYWH(2, 2, 3, 2), core.NewStyledCell('.', core.DefaultStyle()))
	if got := term.GetCell(4, 3); got.Rune != '.' {
		t.Errorf("inside rect = %q, want '.'", got.Rune)
	}
	if got := term.GetCell(5, 3); got.Rune == '.' {
		t.Error("cell outside rect should not be filled")
	}

	term.Clear()
	if got := term.GetCell(4, 3); got.Rune != ' ' {
		t.Errorf("after Clear = %q, want ' '", got.Rune)
	}
}

func TestTerminalMouseEvent(t *testing.T) {
	term, sim := newSimTerminal(t, 20, 10)

	sim.InjectMouse(5, 6, tcell.Button1, tcell.ModShift)
	ev := term.PollEvent()
	for ev.Type == EventResize {
		ev = term.PollEvent()
	}
	if ev.Type != EventMouse {
		t.Fatalf("Type = %v, want EventMouse", ev.Type)
	}
	if ev.MouseX != 5 || ev.MouseY != 6 {
		t.Errorf("position = (%d, %d), want (5, 6)", ev.MouseX, ev.MouseY)
	}
	if !ev.Buttons.Has(ButtonPrimary) || ev.Buttons.Has(ButtonSecondary) {
		t.Errorf("Buttons = %b, want primary", ev.Buttons)
	}
	if !ev.Mod.Has(ModShift) {
		t.Error("shift modifier lost")
	}
}

func TestTerminalPostEvent(t *testing.T) {
	term, _ := newSimTerminal(t, 20, 10)

	if err := term.PostEvent(Event{Type: EventKey, Key: KeyDelete}); err != nil {
		t.Fatal(err)
	}
	ev := term.PollEvent()
	for ev.Type == EventResize {
		ev = term.PollEvent()
	}
	if ev.Type != EventKey || ev.Key != KeyDelete {
		t.Errorf("got %+v, want a delete key event", ev)
	}
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		in   tcell.Key
		want Key
	}{
		{tcell.KeyRune, KeyRune},
		{tcell.KeyDelete, KeyDelete},
		{tcell.KeyBackspace, KeyBackspace},
		{tcell.KeyBackspace2, KeyBackspace},
		{tcell.KeyCtrlC, KeyCtrlC},
		{tcell.KeyCtrlS, KeyCtrlS},
		{tcell.KeyEscape, KeyEscape},
		{tcell.KeyF5, KeyOther},
	}
	for _, tt := range tests {
		if got := convertKey(tt.in); got != tt.want {
			t.Errorf("convertKey(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConvertButtons(t *testing.T) {
	tests := []struct {
		in   tcell.ButtonMask
		want ButtonMask
	}{
		{tcell.ButtonNone, ButtonNone},
		{tcell.Button1, ButtonPrimary},
		{tcell.Button2, ButtonSecondary},
		{tcell.Button3, ButtonMiddle},
		{tcell.WheelDown, WheelDown},
		{tcell.Button1 | tcell.Button3, ButtonPrimary | ButtonMiddle},
	}
	for _, tt := range tests {
		if got := convertButtons(tt.in); got != tt.want {
			t.Errorf("convertButtons(%v) = %b, want %b", tt.in, got, tt.want)
		}
	}
}
