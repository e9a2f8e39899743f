package editor

import (
	"fmt"

	"github.com/yengalvez/tour360/pkg/client"
)

type SceneItem struct {
	ID      string
	Name    string
	URL     string
	Active  bool
	Initial bool
}

type HotspotItem struct {
	ID         string
	Label      string
	TargetName string
}

// View is everything a front end needs to draw the editor.
type View struct {
	HasTour         bool
	Slug            string
	Title           string
	PublicPath      string
	SceneTitle      string
	Hint            string
	Scenes          []SceneItem
	Hotspots        []HotspotItem
	HotspotCount    string
	Placing         bool
	AwaitingHotspot bool
	// Targets are the scenes a new hotspot may point to.
	Targets []SceneItem
}

func buildView(st State) View {
	v := View{
		HasTour:         st.Slug != "",
		Slug:            st.Slug,
		Title:           st.Title,
		Placing:         st.Placing,
		AwaitingHotspot: st.Pending != nil,
		SceneTitle:      "Sin escena",
		Hint:            "Sube una escena para comenzar",
		HotspotCount:    countText(0),
		Scenes:          make([]SceneItem, 0, len(st.Scenes)),
		Hotspots:        []HotspotItem{},
	}
	if st.Slug != "" {
		v.PublicPath = "/" + st.Slug
	}

	for _, sc := range st.Scenes {
		v.Scenes = append(v.Scenes, SceneItem{
			ID:      sc.ID,
			Name:    sc.Name,
			URL:     sc.URL,
			Active:  sc.ID == st.CurrentSceneID,
			Initial: sc.ID == st.InitialSceneID,
		})
	}
	if st.Pending != nil {
		v.Targets = v.Scenes
	}

	sc := st.scene(st.CurrentSceneID)
	if sc == nil {
		return v
	}
	v.SceneTitle = sc.Name
	v.HotspotCount = countText(len(sc.Hotspots))
	switch n := len(sc.Hotspots); n {
	case 0:
		v.Hint = "Aún no hay hotspots en esta escena"
	case 1:
		v.Hint = "1 hotspot listo"
	default:
		v.Hint = fmt.Sprintf("%d hotspots listos", n)
	}
	for _, h := range sc.Hotspots {
		v.Hotspots = append(v.Hotspots, HotspotItem{
			ID:         h.ID,
			Label:      h.Label,
			TargetName: targetName(st, h),
		})
	}
	return v
}

func buildMarkers(st State, sc *client.Scene) []Marker {
	out := make([]Marker, 0, len(sc.Hotspots))
	for _, h := range sc.Hotspots {
		m := Marker{ID: h.ID, Label: h.Label, Tooltip: h.Label, Yaw: h.Yaw, Pitch: h.Pitch}
		if h.TargetSceneID != nil {
			m.TargetSceneID = *h.TargetSceneID
		}
		if name := targetName(st, h); name != "" {
			m.Tooltip = h.Label + " → " + name
		}
		out = append(out, m)
	}
	return out
}

// targetName is empty for hotspots whose target no longer exists.
func targetName(st State, h client.Hotspot) string {
	if h.TargetSceneID == nil {
		return ""
	}
	if t := st.scene(*h.TargetSceneID); t != nil {
		return t.Name
	}
	return ""
}

func countText(n int) string {
	if n == 1 {
		return "1 hotspot"
	}
	return fmt.Sprintf("%d hotspots", n)
}
