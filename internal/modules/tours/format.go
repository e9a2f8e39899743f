package tours

// TourView is the client facing shape of a tour. Every scene carries the
// public URL of its image so clients never build paths themselves.
type TourView struct {
	Slug           string      `json:"slug"`
	Title          string      `json:"title"`
	InitialSceneID *string     `json:"initialSceneId"`
	Scenes         []SceneView `json:"scenes"`
	FolderPath     string      `json:"folderPath"`
}

type SceneView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	File     string    `json:"file"`
	Hotspots []Hotspot `json:"hotspots"`
	URL      string    `json:"url"`
}

type UploadResult struct {
	Scene SceneView `json:"scene"`
	Tour  TourView  `json:"tour"`
}

// FolderPath is the public viewer address of a tour.
func FolderPath(slug string) string { return "/tours/" + slug }

func (s *Service) formatScene(slug string, sc Scene) SceneView {
	name := sc.Name
	if name == "" {
		name = defaultSceneName
	}
	hotspots := sc.Hotspots
	if hotspots == nil {
		hotspots = []Hotspot{}
	}
	return SceneView{
		ID:       sc.ID,
		Name:     name,
		File:     sc.File,
		Hotspots: hotspots,
		URL:      s.store.URL(slug, sc.File),
	}
}

// formatTour omits scenes without a stored file.
func (s *Service) formatTour(slug string, t Tour) TourView {
	title := t.Title
	if title == "" {
		title = slug
	}
	scenes := make([]SceneView, 0, len(t.Scenes))
	for _, sc := range t.Scenes {
		if sc.File == "" {
			continue
		}
		scenes = append(scenes, s.formatScene(slug, sc))
	}
	return TourView{
		Slug:           slug,
		Title:          title,
		InitialSceneID: t.InitialSceneID,
		Scenes:         scenes,
		FolderPath:     FolderPath(slug),
	}
}
