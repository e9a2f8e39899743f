// Package editor holds the tour editing state machine shared by editor
// front ends. A Session owns the State; callers only drive transitions and
// read the derived View.
package editor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/yengalvez/tour360/pkg/client"
)

var (
	ErrNoTour         = errors.New("editor: no tour open")
	ErrNoScene        = errors.New("editor: no active scene")
	ErrUnknownScene   = errors.New("editor: unknown scene")
	ErrUnknownHotspot = errors.New("editor: unknown hotspot")
	ErrNoPendingPoint = errors.New("editor: no point picked on the panorama")
	ErrLabelRequired  = errors.New("editor: hotspot label required")
	ErrTargetRequired = errors.New("editor: hotspot target must be an existing scene")
	ErrNameRequired   = errors.New("editor: tour name required")
	ErrNotPlacing     = errors.New("editor: not placing a hotspot")
)

// API is the tour service as seen by the editor. *client.Client satisfies it.
type API interface {
	CreateTour(ctx context.Context, name, title string) (client.Tour, error)
	GetTour(ctx context.Context, slug string) (client.Tour, error)
	SaveTour(ctx context.Context, slug string, req client.SaveRequest) (client.Tour, error)
	UploadScene(ctx context.Context, slug, filename string, r io.Reader, sceneName string) (client.UploadResult, error)
}

// Marker is a hotspot as drawn on the panorama.
type Marker struct {
	ID            string
	Label         string
	Tooltip       string
	TargetSceneID string
	Yaw           float64
	Pitch         float64
}

// Panorama is the 360° renderer. Callbacks may fire from any goroutine but
// must not be invoked synchronously from LoadPanorama or SetMarkers.
type Panorama interface {
	LoadPanorama(url string)
	SetMarkers(markers []Marker)
	OnMarkerSelected(fn func(Marker))
	OnSceneClicked(fn func(yaw, pitch float64))
}

type Point struct {
	Yaw   float64
	Pitch float64
}

type State struct {
	Slug           string
	Title          string
	Scenes         []client.Scene
	InitialSceneID string
	CurrentSceneID string

	// Placing is true between StartPlacement and the next panorama click.
	Placing bool
	// Pending is the picked point waiting for AddHotspot.
	Pending *Point
}

func (st State) scene(id string) *client.Scene {
	for i := range st.Scenes {
		if st.Scenes[i].ID == id {
			return &st.Scenes[i]
		}
	}
	return nil
}

type Session struct {
	api  API
	pano Panorama

	mu    sync.Mutex
	state State
	view  View
	// loadedURL is the panorama currently shown; empty forces the next load.
	loadedURL string
	listeners []func(View)
}

func NewSession(api API, pano Panorama) *Session {
	s := &Session{api: api, pano: pano}
	s.view = buildView(s.state)
	if pano != nil {
		pano.OnSceneClicked(func(yaw, pitch float64) { _ = s.ClickScene(yaw, pitch) })
		pano.OnMarkerSelected(func(m Marker) { _ = s.SelectMarker(m) })
	}
	return s
}

// OnChange registers fn to receive the View after every transition.
func (s *Session) OnChange(fn func(View)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Scenes = cloneScenes(st.Scenes)
	if st.Pending != nil {
		p := *st.Pending
		st.Pending = &p
	}
	return st
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Create creates a tour on the server and opens it.
func (s *Session) Create(ctx context.Context, name, title string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	t, err := s.api.CreateTour(ctx, name, strings.TrimSpace(title))
	if err != nil {
		return err
	}
	return s.update(func(st *State) error {
		*st = State{}
		s.loadedURL = ""
		applyTour(st, t)
		return nil
	})
}

// Open loads an existing tour, discarding any unsaved local edits.
func (s *Session) Open(ctx context.Context, slug string) error {
	t, err := s.api.GetTour(ctx, slug)
	if err != nil {
		return err
	}
	return s.update(func(st *State) error {
		*st = State{}
		s.loadedURL = ""
		applyTour(st, t)
		return nil
	})
}

// Upload sends a new scene image and makes it the active scene. Unsaved
// hotspots on other scenes are kept.
func (s *Session) Upload(ctx context.Context, filename string, r io.Reader, sceneName string) (client.Scene, error) {
	sl := s.State().Slug
	if sl == "" {
		return client.Scene{}, ErrNoTour
	}
	res, err := s.api.UploadScene(ctx, sl, filename, r, strings.TrimSpace(sceneName))
	if err != nil {
		return client.Scene{}, err
	}
	sc := normalizeScene(res.Scene)
	err = s.update(func(st *State) error {
		st.Scenes = append(st.Scenes, sc)
		if st.InitialSceneID == "" {
			st.InitialSceneID = sc.ID
			if res.Tour.InitialSceneID != nil && *res.Tour.InitialSceneID != "" {
				st.InitialSceneID = *res.Tour.InitialSceneID
			}
		}
		st.CurrentSceneID = sc.ID
		st.Placing, st.Pending = false, nil
		return nil
	})
	return sc, err
}

// Save persists the local state and replaces it with the server's
// sanitized copy.
func (s *Session) Save(ctx context.Context) error {
	st := s.State()
	if st.Slug == "" {
		return ErrNoTour
	}
	req := client.SaveRequest{Title: st.Title, Scenes: st.Scenes}
	if st.InitialSceneID != "" {
		id := st.InitialSceneID
		req.InitialSceneID = &id
	}
	t, err := s.api.SaveTour(ctx, st.Slug, req)
	if err != nil {
		return err
	}
	return s.update(func(st *State) error {
		current := st.CurrentSceneID
		applyTour(st, t)
		if st.scene(current) != nil {
			st.CurrentSceneID = current
		}
		return nil
	})
}

func (s *Session) ActivateScene(id string) error {
	return s.update(func(st *State) error {
		if st.scene(id) == nil {
			return ErrUnknownScene
		}
		st.CurrentSceneID = id
		st.Placing, st.Pending = false, nil
		return nil
	})
}

func (s *Session) SetInitialScene(id string) error {
	return s.update(func(st *State) error {
		if st.scene(id) == nil {
			return ErrUnknownScene
		}
		st.InitialSceneID = id
		return nil
	})
}

// SetTitle changes the title sent on the next Save.
func (s *Session) SetTitle(title string) error {
	return s.update(func(st *State) error {
		if st.Slug == "" {
			return ErrNoTour
		}
		st.Title = strings.TrimSpace(title)
		return nil
	})
}

// StartPlacement arms the next panorama click as a hotspot position.
func (s *Session) StartPlacement() error {
	return s.update(func(st *State) error {
		if st.scene(st.CurrentSceneID) == nil {
			return ErrNoScene
		}
		st.Placing, st.Pending = true, nil
		return nil
	})
}

func (s *Session) CancelPlacement() {
	_ = s.update(func(st *State) error {
		st.Placing, st.Pending = false, nil
		return nil
	})
}

// ClickScene captures a panorama click while placing.
func (s *Session) ClickScene(yaw, pitch float64) error {
	return s.update(func(st *State) error {
		if !st.Placing {
			return ErrNotPlacing
		}
		st.Placing = false
		st.Pending = &Point{Yaw: yaw, Pitch: pitch}
		return nil
	})
}

// AddHotspot adds a hotspot at the pending point of the active scene.
func (s *Session) AddHotspot(label, targetSceneID string) (client.Hotspot, error) {
	var hs client.Hotspot
	err := s.update(func(st *State) error {
		sc := st.scene(st.CurrentSceneID)
		if sc == nil {
			return ErrNoScene
		}
		if st.Pending == nil {
			return ErrNoPendingPoint
		}
		label = strings.TrimSpace(label)
		if label == "" {
			return ErrLabelRequired
		}
		if st.scene(targetSceneID) == nil {
			return ErrTargetRequired
		}
		target := targetSceneID
		hs = client.Hotspot{
			ID:            newHotspotID(),
			Label:         label,
			TargetSceneID: &target,
			Yaw:           st.Pending.Yaw,
			Pitch:         st.Pending.Pitch,
		}
		sc.Hotspots = append(sc.Hotspots, hs)
		st.Pending = nil
		return nil
	})
	return hs, err
}

func (s *Session) RemoveHotspot(id string) error {
	return s.update(func(st *State) error {
		sc := st.scene(st.CurrentSceneID)
		if sc == nil {
			return ErrNoScene
		}
		for i, h := range sc.Hotspots {
			if h.ID == id {
				sc.Hotspots = append(sc.Hotspots[:i:i], sc.Hotspots[i+1:]...)
				return nil
			}
		}
		return ErrUnknownHotspot
	})
}

// SelectMarker follows a marker to its target scene. Markers without a
// target are ignored.
func (s *Session) SelectMarker(m Marker) error {
	if m.TargetSceneID == "" {
		return nil
	}
	return s.ActivateScene(m.TargetSceneID)
}

// update applies fn under the lock, recomputes the View and then pushes
// panorama and listener updates outside of it. fn may touch Session fields.
func (s *Session) update(fn func(*State) error) error {
	s.mu.Lock()
	if err := fn(&s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	s.view = buildView(s.state)
	v := s.view
	listeners := append([]func(View){}, s.listeners...)

	var load string
	var markers []Marker
	if sc := s.state.scene(s.state.CurrentSceneID); sc != nil {
		if sc.URL != s.loadedURL {
			load = sc.URL
			s.loadedURL = sc.URL
		}
		markers = buildMarkers(s.state, sc)
	} else {
		s.loadedURL = ""
	}
	s.mu.Unlock()

	if s.pano != nil {
		if load != "" {
			s.pano.LoadPanorama(load)
		}
		s.pano.SetMarkers(markers)
	}
	for _, l := range listeners {
		l(v)
	}
	return nil
}

func applyTour(st *State, t client.Tour) {
	st.Slug = t.Slug
	st.Title = t.Title
	st.Scenes = make([]client.Scene, 0, len(t.Scenes))
	for _, sc := range t.Scenes {
		st.Scenes = append(st.Scenes, normalizeScene(sc))
	}
	st.InitialSceneID = ""
	if t.InitialSceneID != nil && st.scene(*t.InitialSceneID) != nil {
		st.InitialSceneID = *t.InitialSceneID
	}
	st.CurrentSceneID = st.InitialSceneID
	if st.CurrentSceneID == "" && len(st.Scenes) > 0 {
		st.CurrentSceneID = st.Scenes[0].ID
	}
	st.Placing, st.Pending = false, nil
}

func normalizeScene(sc client.Scene) client.Scene {
	if sc.Hotspots == nil {
		sc.Hotspots = []client.Hotspot{}
	}
	return sc
}

func cloneScenes(in []client.Scene) []client.Scene {
	if in == nil {
		return nil
	}
	out := make([]client.Scene, len(in))
	for i, sc := range in {
		out[i] = sc
		out[i].Hotspots = append([]client.Hotspot{}, sc.Hotspots...)
	}
	return out
}

func newHotspotID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return "hotspot-" + hex.EncodeToString(b)
}
