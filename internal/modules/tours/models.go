package tours

// Tour is the persisted document, stored as <slug>/tour.json. The slug is
// the storage key and is not repeated inside the document.
type Tour struct {
	Title          string  `json:"title"`
	InitialSceneID *string `json:"initialSceneId"`
	Scenes         []Scene `json:"scenes"`
}

type Scene struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	File     string    `json:"file"`
	Hotspots []Hotspot `json:"hotspots"`
}

// Hotspot is a clickable point at (Yaw, Pitch) on a scene. TargetSceneID
// is not checked against the tour's scenes.
type Hotspot struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	TargetSceneID *string `json:"targetSceneId"`
	Yaw           float64 `json:"yaw"`
	Pitch         float64 `json:"pitch"`
}

type Stage string

const (
	StageDraft     Stage = "draft"
	StagePopulated Stage = "populated"
	StagePublished Stage = "published"
)

func (t Tour) Stage() Stage {
	switch {
	case len(t.Scenes) == 0:
		return StageDraft
	case t.InitialSceneID == nil || *t.InitialSceneID == "":
		return StagePopulated
	default:
		return StagePublished
	}
}

func (t Tour) hasScene(id string) bool {
	for _, sc := range t.Scenes {
		if sc.ID == id {
			return true
		}
	}
	return false
}

// normalize replaces nil slices so the document always encodes lists as [].
func (t *Tour) normalize() {
	if t.Scenes == nil {
		t.Scenes = []Scene{}
	}
	for i := range t.Scenes {
		if t.Scenes[i].Hotspots == nil {
			t.Scenes[i].Hotspots = []Hotspot{}
		}
	}
}
