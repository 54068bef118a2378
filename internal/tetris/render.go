package tetris

import (
	"fmt"

	"github.com/vovakirdan/tetris-ga/internal/core"
)

const (
	cellWidth    = 2 // screen columns per board column
	boardScreenW = Width*cellWidth + 2
	boardScreenH = Height + 2
	panelWidth   = 22
)

// MinScreen returns the smallest screen that fits the board and side panel.
func MinScreen() (w, h int) {
	return boardScreenW + 1 + panelWidth, boardScreenH
}

// Render draws the board, the falling piece, the next-piece preview and
// the run statistics into dst.
func (d *Driver) Render(dst *core.Screen) {
	dst.Clear()

	minW, minH := MinScreen()
	if dst.Width() < minW || dst.Height() < minH {
		msg := fmt.Sprintf("Need %dx%d, have %dx%d", minW, minH, dst.Width(), dst.Height())
		dst.DrawText(max((dst.Width()-len(msg))/2, 0), dst.Height()/2, msg)
		return
	}

	ox := (dst.Width() - minW) / 2
	oy := (dst.Height() - minH) / 2
	g := d.game

	dst.DrawBox(ox, oy, boardScreenW, boardScreenH, core.ColorGray)

	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			x, y := ox+1+col*cellWidth, oy+1+row
			if k, ok := KindForTag(g.board.cells[row][col]); ok {
				drawBlock(dst, x, y, k.Color())
			} else {
				dst.SetCell(x, y, ' ', core.ColorDefault)
				dst.SetCell(x+1, y, '.', core.ColorGray)
			}
		}
	}

	if !d.done {
		cur := g.Current()
		cur.cells(func(row, col int) {
			if row >= 0 && row < Height && col >= 0 && col < Width {
				drawBlock(dst, ox+1+col*cellWidth, oy+1+row, cur.Kind.Color())
			}
		})
	}

	d.renderPanel(dst, ox+boardScreenW+1, oy)
}

func drawBlock(dst *core.Screen, x, y int, c core.Color) {
	dst.SetCell(x, y, '█', c)
	dst.SetCell(x+1, y, '█', c)
}

func (d *Driver) renderPanel(dst *core.Screen, x, y int) {
	g := d.game

	dst.DrawTextColor(x, y+1, "NEXT", core.ColorBrightWhite)
	preview := Piece{Kind: g.Next()}
	preview.cells(func(row, col int) {
		drawBlock(dst, x+col*cellWidth, y+2+row, preview.Kind.Color())
	})

	lines := []string{
		fmt.Sprintf("Score   %d", g.Score()),
		fmt.Sprintf("Lines   %d", g.Lines()),
		fmt.Sprintf("Pieces  %d", g.Pieces()),
		fmt.Sprintf("Round   %d/%d", min(d.round+1, d.cfg.Rounds), d.cfg.Rounds),
		fmt.Sprintf("Average %d", d.Average()),
	}
	if plan := g.Plan(); plan.Ready {
		lines = append(lines, fmt.Sprintf("Target  r%d c%d", plan.Target.Rotation, plan.Target.Col))
	}
	for i, line := range lines {
		dst.DrawText(x, y+7+i, line)
	}

	w := d.cfg.Weights
	dst.DrawTextColor(x, y+8+len(lines), "Weights", core.ColorBrightWhite)
	dst.DrawText(x, y+9+len(lines), fmt.Sprintf("%d %d %d", w[0], w[1], w[2]))
	dst.DrawText(x, y+10+len(lines), fmt.Sprintf("%d %d %d", w[3], w[4], w[5]))

	if d.done {
		dst.DrawTextColor(x, y+12+len(lines), "RUN COMPLETE", core.ColorYellow)
	}
}
