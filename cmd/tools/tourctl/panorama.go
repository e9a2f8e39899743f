package main

import (
	"fmt"
	"io"

	"github.com/yengalvez/tour360/internal/editor"
)

// textPanorama reports panorama changes as text. Clicks come from flags
// instead of a pointer.
type textPanorama struct {
	out      io.Writer
	onClick  func(yaw, pitch float64)
	onMarker func(editor.Marker)
}

func newTextPanorama(out io.Writer) *textPanorama {
	return &textPanorama{out: out}
}

func (p *textPanorama) LoadPanorama(url string) {
	fmt.Fprintf(p.out, "panorama %s\n", url)
}

func (p *textPanorama) SetMarkers(markers []editor.Marker) {
	for _, m := range markers {
		fmt.Fprintf(p.out, "  marker %s yaw=%.3f pitch=%.3f %s\n", m.ID, m.Yaw, m.Pitch, m.Tooltip)
	}
}

func (p *textPanorama) OnMarkerSelected(fn func(editor.Marker)) { p.onMarker = fn }

func (p *textPanorama) OnSceneClicked(fn func(yaw, pitch float64)) { p.onClick = fn }

func (p *textPanorama) Click(yaw, pitch float64) {
	if p.onClick != nil {
		p.onClick(yaw, pitch)
	}
}
