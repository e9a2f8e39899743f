package tours

import (
	"context"
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Drop names the reason an entry was left out of a save. The empty Drop
// means the entry was kept.
type Drop string

const (
	Kept               Drop = ""
	DropNotObject      Drop = "not_an_object"
	DropBadCoordinates Drop = "missing_or_non_numeric_coordinates"
	DropMissingID      Drop = "missing_id"
	DropMissingFile    Drop = "missing_file"
	DropFileNotStored  Drop = "file_not_stored"
)

// Dropped records an entry of a submitted list that did not survive
// cleaning. It is only ever logged, clients are not told.
type Dropped struct {
	Index  int
	Reason Drop
}

const (
	defaultHotspotLabel = "Hotspot"
	defaultSceneName    = "Escena"
)

var idUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// FileChecker reports whether a scene image is stored in the tour folder.
type FileChecker func(ctx context.Context, file string) (bool, error)

// CleanHotspots keeps, in order, every element of raw that can be turned
// into a valid hotspot. Anything that is not a list yields no hotspots.
func CleanHotspots(raw any) []Hotspot {
	kept, _ := cleanHotspots(raw)
	return kept
}

func cleanHotspots(raw any) ([]Hotspot, []Dropped) {
	items, _ := raw.([]any)
	kept := make([]Hotspot, 0, len(items))
	var dropped []Dropped
	for i, item := range items {
		h, drop := cleanHotspot(item)
		if drop != Kept {
			dropped = append(dropped, Dropped{Index: i, Reason: drop})
			continue
		}
		kept = append(kept, h)
	}
	return kept, dropped
}

func cleanHotspot(raw any) (Hotspot, Drop) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Hotspot{}, DropNotObject
	}

	yaw, okYaw := toFloat(m["yaw"])
	pitch, okPitch := toFloat(m["pitch"])
	if !okYaw || !okPitch {
		return Hotspot{}, DropBadCoordinates
	}

	label := defaultHotspotLabel
	if v, present := m["label"]; present && v != nil {
		if s := strings.TrimSpace(toString(v)); s != "" {
			label = s
		}
	}

	id := sanitizeID(m["id"])
	if id == "" {
		id = newHotspotID()
	}

	return Hotspot{
		ID:            id,
		Label:         label,
		TargetSceneID: toNullableString(m["targetSceneId"]),
		Yaw:           yaw,
		Pitch:         pitch,
	}, Kept
}

// CleanScene turns one submitted scene into its canonical shape, or drops
// it. The error is only non-nil when the file check itself failed.
func CleanScene(ctx context.Context, raw any, exists FileChecker) (Scene, Drop, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Scene{}, DropNotObject, nil
	}
	if m["id"] == nil {
		return Scene{}, DropMissingID, nil
	}
	if m["file"] == nil {
		return Scene{}, DropMissingFile, nil
	}

	id := sanitizeID(m["id"])
	if id == "" {
		return Scene{}, DropMissingID, nil
	}
	file := baseName(toString(m["file"]))
	if file == "" {
		return Scene{}, DropMissingFile, nil
	}
	if !isImageFile(file) {
		return Scene{}, DropFileNotStored, nil
	}
	stored, err := exists(ctx, file)
	if err != nil {
		return Scene{}, Kept, err
	}
	if !stored {
		return Scene{}, DropFileNotStored, nil
	}

	name := defaultSceneName
	if v := m["name"]; v != nil {
		if s := strings.TrimSpace(toString(v)); s != "" {
			name = s
		}
	}

	hotspots, _ := cleanHotspots(m["hotspots"])
	return Scene{ID: id, Name: name, File: file, Hotspots: hotspots}, Kept, nil
}

// CleanScenes folds CleanScene over raw, keeping submission order.
func CleanScenes(ctx context.Context, raw any, exists FileChecker) ([]Scene, []Dropped, error) {
	items, _ := raw.([]any)
	kept := make([]Scene, 0, len(items))
	var dropped []Dropped
	for i, item := range items {
		sc, drop, err := CleanScene(ctx, item, exists)
		if err != nil {
			return nil, nil, err
		}
		if drop != Kept {
			dropped = append(dropped, Dropped{Index: i, Reason: drop})
			continue
		}
		kept = append(kept, sc)
	}
	return kept, dropped, nil
}

func sanitizeID(v any) string {
	if v == nil {
		return ""
	}
	return idUnsafe.ReplaceAllString(toString(v), "")
}

// baseName strips any directory part, whichever separator the client used.
func baseName(file string) string {
	file = strings.ReplaceAll(file, "\\", "/")
	if strings.TrimRight(file, "/") == "" {
		return ""
	}
	b := path.Base(file)
	if b == "." || b == ".." || b == "/" {
		return ""
	}
	return b
}

func extension(file string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(file), "."))
}

func isImageFile(file string) bool {
	_, ok := imageExtensions[extension(file)]
	return ok
}

// toFloat accepts JSON numbers and numeric strings. Non-finite values are
// rejected since they cannot be written back as JSON.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return ""
	default:
		return ""
	}
}

func toNullableString(v any) *string {
	switch v.(type) {
	case string, float64:
		s := toString(v)
		if s == "" {
			return nil
		}
		return &s
	default:
		return nil
	}
}
