package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if c := s.GetCell(x, y); c != blank {
				t.Fatalf("New screen should be blank, got %+v at (%d, %d)", c, x, y)
			}
		}
	}
}

func TestScreenSetCell(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetCell(5, 5, '#', ColorCyan)
	c := s.GetCell(5, 5)
	if c.Rune != '#' || c.Color != ColorCyan {
		t.Errorf("GetCell(5, 5) = %+v, expected '#' in cyan", c)
	}

	s.Set(4, 4, 'X')
	if s.GetCell(4, 4).Color != ColorDefault {
		t.Error("Set should write the default color")
	}

	// Out of bounds is silent
	s.SetCell(-1, 0, 'A', ColorRed)
	s.SetCell(100, 0, 'A', ColorRed)
	s.SetCell(0, -1, 'A', ColorRed)
	s.SetCell(0, 100, 'A', ColorRed)

	if s.Get(-1, 0) != ' ' || s.Get(100, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(6, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 6; x++ {
			s.SetCell(x, y, 'X', ColorRed)
		}
	}

	s.Clear()

	if got := s.String(); got != strings.Repeat("      \n", 2)+"      " {
		t.Errorf("After Clear, String() = %q", got)
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawTextColor(2, 1, "Score", ColorYellow)

	if got := s.Row(1); got != "  Score             " {
		t.Errorf("Row(1) = %q", got)
	}
	if s.GetCell(2, 1).Color != ColorYellow {
		t.Error("DrawTextColor should color the text")
	}

	// Clipped at the right edge
	s.DrawText(18, 0, "Hello")
	if s.Get(18, 0) != 'H' || s.Get(19, 0) != 'e' {
		t.Error("Text should be clipped at right boundary")
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawBox(1, 1, 5, 4, ColorGray)

	corners := []struct {
		x, y int
		want rune
	}{
		{1, 1, '┌'},
		{5, 1, '┐'},
		{1, 4, '└'},
		{5, 4, '┘'},
	}
	for _, tc := range corners {
		if got := s.Get(tc.x, tc.y); got != tc.want {
			t.Errorf("corner at (%d, %d) = %q, expected %q", tc.x, tc.y, got, tc.want)
		}
	}

	for x := 2; x < 5; x++ {
		if s.Get(x, 1) != '─' || s.Get(x, 4) != '─' {
			t.Errorf("horizontal edge missing at x=%d", x)
		}
	}
	for y := 2; y < 4; y++ {
		if s.Get(1, y) != '│' || s.Get(5, y) != '│' {
			t.Errorf("vertical edge missing at y=%d", y)
		}
	}
	if s.Get(3, 2) != ' ' {
		t.Error("DrawBox should not fill the interior")
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(4, 4)
	s.Set(0, 0, 'X')
	s.Resize(8, 2)

	if s.Width() != 8 || s.Height() != 2 {
		t.Fatalf("Resize() dims = %dx%d, expected 8x2", s.Width(), s.Height())
	}
	if s.Get(0, 0) != ' ' {
		t.Error("Resize should discard content")
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
		move   bool
	}{
		{ActionNone, "None", false},
		{ActionLeft, "Left", true},
		{ActionRight, "Right", true},
		{ActionDown, "Down", true},
		{ActionRotate, "Rotate", true},
		{ActionQuit, "Quit", false},
		{Action(42), "Unknown", false},
	}

	for _, tc := range tests {
		if got := tc.action.String(); got != tc.want {
			t.Errorf("Action(%d).String() = %q, expected %q", tc.action, got, tc.want)
		}
		if got := tc.action.IsMove(); got != tc.move {
			t.Errorf("Action(%d).IsMove() = %v, expected %v", tc.action, got, tc.move)
		}
	}
}
