package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"gridwalk.ai/internal/observerproto"
)

// Each arena cell is two terminal columns wide so agents render as squares.
const cellCols = 2

var (
	styleBackground = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorDarkGray)
	styleAgent      = tcell.StyleDefault.Background(tcell.ColorGray)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDenied     = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

var palette = []tcell.Color{
	tcell.ColorSilver,
	tcell.ColorTeal,
	tcell.ColorOlive,
	tcell.ColorPurple,
	tcell.ColorNavy,
	tcell.ColorMaroon,
	tcell.ColorGreen,
	tcell.ColorFuchsia,
}

// canvas is the part of tcell.Screen the renderer draws through.
type canvas interface {
	Clear()
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Show()
}

// view is what the renderer draws; it is only touched by the UI goroutine.
type view struct {
	worldID string
	height  int
	width   int
	color   bool

	tick     uint64
	agents   []observerproto.AgentState
	outcomes []observerproto.OutcomeState
	status   string
}

func (v *view) applyBootstrap(b observerproto.BootstrapResponse) {
	v.worldID = b.WorldID
	v.height = b.ArenaParams.Height
	v.width = b.ArenaParams.Width
	v.tick = b.Tick
	v.agents = b.Agents
}

func (v *view) applyTick(m observerproto.TickMsg) {
	v.tick = m.Tick
	v.agents = m.Agents
	v.outcomes = m.Outcomes
}

func (v *view) agentStyle(i int) tcell.Style {
	if !v.color {
		return styleAgent
	}
	return tcell.StyleDefault.Background(palette[i%len(palette)])
}

// draw renders the arena with X growing down and Y growing right, matching
// the occupancy index order.
func (v *view) draw(s canvas) {
	s.Clear()
	for x := 0; x < v.height; x++ {
		for y := 0; y < v.width; y++ {
			for c := 0; c < cellCols; c++ {
				s.SetContent(y*cellCols+c, x, '·', nil, styleBackground)
			}
		}
	}
	for i, a := range v.agents {
		x, y := a.Pos[0], a.Pos[1]
		if x < 0 || x >= v.height || y < 0 || y >= v.width {
			continue
		}
		for c := 0; c < cellCols; c++ {
			s.SetContent(y*cellCols+c, x, ' ', nil, v.agentStyle(i))
		}
	}

	row := v.height + 1
	drawText(s, 0, row, styleStatus, fmt.Sprintf("world=%s tick=%d agents=%d  q to quit", v.worldID, v.tick, len(v.agents)))
	for _, o := range v.outcomes {
		if o.Code == "" {
			continue
		}
		row++
		drawText(s, 0, row, styleDenied, fmt.Sprintf("move action denied: %s -> (%d,%d) %s", o.AgentID, o.To[0], o.To[1], o.Result))
	}
	if v.status != "" {
		drawText(s, 0, row+1, styleDenied, v.status)
	}
	s.Show()
}

func drawText(s canvas, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
