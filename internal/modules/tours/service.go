package tours

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/yengalvez/tour360/internal/shared/apperr"
	"github.com/yengalvez/tour360/internal/shared/slug"
)

const (
	msgNameRequired  = "Elige un nombre válido para tu tour"
	msgFolderInvalid = "La carpeta del tour no es válida"
	msgTourInvalid   = "Tour inválido"
	msgReserved      = "Este nombre está reservado, elige otro"
	msgAlreadyExists = "Ya existe un tour con este nombre"
	msgNotFound      = "Tour no encontrado"
	msgCreateFailed  = "No se pudo crear la carpeta del tour"
	msgSaveFailed    = "No se pudo guardar el tour"
	msgSceneFailed   = "No se pudo guardar la escena"
	msgNoFile        = "No se recibió ningún archivo"
	msgBadFormat     = "Formato de imagen no permitido"
	msgMalformedJSON = "JSON inválido"
	msgLoadFailed    = "No se pudo leer el tour"
	msgCheckFailed   = "No se pudieron comprobar las escenas"
)

// Service implements the tour operations on top of a Store.
type Service struct {
	store  *Store
	logger *slog.Logger
}

func NewService(store *Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, logger: logger}
}

type CreateInput struct {
	Name  string
	Title string
}

// CreateTour creates an empty draft tour named after in.Name.
func (s *Service) CreateTour(ctx context.Context, in CreateInput) (TourView, error) {
	name := strings.TrimSpace(in.Name)
	sl := slug.Slugify(name)
	if sl == "" {
		return TourView{}, apperr.InvalidSlugErr(msgNameRequired)
	}
	if err := checkMutable(sl, msgFolderInvalid); err != nil {
		return TourView{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = name
	}
	t := Tour{Title: title, Scenes: []Scene{}}

	if err := s.store.Create(ctx, sl, t); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return TourView{}, apperr.AlreadyExistsErr(msgAlreadyExists)
		}
		return TourView{}, apperr.StorageErr(msgCreateFailed, err)
	}

	s.logger.InfoContext(ctx, "tour_created", slog.String("slug", sl))
	return s.formatTour(sl, t), nil
}

// GetTour only requires a well formed slug; reserved names simply do not
// exist.
func (s *Service) GetTour(ctx context.Context, rawSlug string) (TourView, error) {
	sl := slug.Normalize(rawSlug)
	if !slug.IsValid(sl) {
		return TourView{}, apperr.InvalidSlugErr(msgTourInvalid)
	}
	t, err := s.load(ctx, sl)
	if err != nil {
		return TourView{}, err
	}
	return s.formatTour(sl, t), nil
}

// Exists reports whether a tour document is stored for rawSlug.
func (s *Service) Exists(ctx context.Context, rawSlug string) bool {
	sl := slug.Normalize(rawSlug)
	if !slug.IsValid(sl) {
		return false
	}
	_, err := s.store.Load(ctx, sl)
	return err == nil
}

// Upload is a scene image received from a client. Body is nil when the
// request carried no file.
type Upload struct {
	Filename  string
	Size      int64
	Body      io.Reader
	SceneName string
}

func (s *Service) UploadScene(ctx context.Context, rawSlug string, up Upload) (UploadResult, error) {
	sl := slug.Normalize(rawSlug)
	if err := checkMutable(sl, msgTourInvalid); err != nil {
		return UploadResult{}, err
	}
	t, err := s.load(ctx, sl)
	if err != nil {
		return UploadResult{}, err
	}
	if up.Body == nil {
		return UploadResult{}, apperr.MalformedInputErr(msgNoFile, nil)
	}

	original := baseName(up.Filename)
	ext := extension(original)
	if _, ok := imageExtensions[ext]; !ok {
		return UploadResult{}, apperr.UnsupportedFormatErr(msgBadFormat)
	}

	name := strings.TrimSpace(up.SceneName)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSuffix(original, path.Ext(original)))
	}
	if name == "" {
		name = defaultSceneName
	}

	file, err := s.store.StoreImage(ctx, sl, up.Body, ext, up.Size)
	if err != nil {
		return UploadResult{}, apperr.StorageErr(msgSceneFailed, err)
	}

	sc := Scene{ID: newSceneID(), Name: name, File: file, Hotspots: []Hotspot{}}
	t.Scenes = append(t.Scenes, sc)
	if t.InitialSceneID == nil || *t.InitialSceneID == "" {
		id := sc.ID
		t.InitialSceneID = &id
	}

	if err := s.store.Save(ctx, sl, t); err != nil {
		return UploadResult{}, apperr.StorageErr(msgSaveFailed, err)
	}

	s.logger.InfoContext(ctx, "scene_uploaded",
		slog.String("slug", sl),
		slog.String("scene_id", sc.ID),
		slog.String("file", file),
		slog.Int64("bytes", up.Size),
	)
	return UploadResult{Scene: s.formatScene(sl, sc), Tour: s.formatTour(sl, t)}, nil
}

// SaveTour replaces title, initial scene and the whole scene list with the
// cleaned version of body. Scenes and hotspots that fail cleaning are left
// out without an error.
func (s *Service) SaveTour(ctx context.Context, rawSlug string, body []byte) (TourView, error) {
	sl := slug.Normalize(rawSlug)
	if err := checkMutable(sl, msgTourInvalid); err != nil {
		return TourView{}, err
	}
	t, err := s.load(ctx, sl)
	if err != nil {
		return TourView{}, err
	}

	payload, err := decodeObject(body)
	if err != nil {
		return TourView{}, apperr.MalformedInputErr(msgMalformedJSON, nil)
	}

	exists := func(ctx context.Context, file string) (bool, error) {
		return s.store.ImageExists(ctx, sl, file)
	}
	scenes, dropped, err := CleanScenes(ctx, payload["scenes"], exists)
	if err != nil {
		return TourView{}, apperr.StorageErr(msgCheckFailed, err)
	}
	for _, d := range dropped {
		s.logger.DebugContext(ctx, "scene_dropped",
			slog.String("slug", sl),
			slog.Int("index", d.Index),
			slog.String("reason", string(d.Reason)),
		)
	}

	if title := strings.TrimSpace(toString(payload["title"])); title != "" {
		t.Title = title
	} else if t.Title == "" {
		t.Title = sl
	}

	t.Scenes = scenes
	t.InitialSceneID = nil
	if v := payload["initialSceneId"]; v != nil {
		if id := toString(v); t.hasScene(id) {
			t.InitialSceneID = &id
		}
	}
	if t.InitialSceneID == nil && len(scenes) > 0 {
		id := scenes[0].ID
		t.InitialSceneID = &id
	}

	if err := s.store.Save(ctx, sl, t); err != nil {
		return TourView{}, apperr.StorageErr(msgSaveFailed, err)
	}

	s.logger.InfoContext(ctx, "tour_saved",
		slog.String("slug", sl),
		slog.String("stage", string(t.Stage())),
		slog.Int("scenes", len(scenes)),
		slog.Int("dropped", len(dropped)),
	)
	return s.formatTour(sl, t), nil
}

// OpenAsset streams a stored scene image for the public tour route.
func (s *Service) OpenAsset(ctx context.Context, rawSlug, file string) (io.ReadCloser, string, int64, error) {
	sl := slug.Normalize(rawSlug)
	if !slug.IsValid(sl) || baseName(file) != file {
		return nil, "", 0, apperr.NotFoundErr(msgNotFound)
	}
	rc, info, err := s.store.OpenAsset(ctx, sl, file)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", 0, apperr.NotFoundErr(msgNotFound)
		}
		return nil, "", 0, apperr.Wrap(err)
	}
	return rc, info.ContentType, info.Size, nil
}

func (s *Service) load(ctx context.Context, sl string) (Tour, error) {
	t, err := s.store.Load(ctx, sl)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Tour{}, apperr.NotFoundErr(msgNotFound)
		}
		return Tour{}, apperr.StorageErr(msgLoadFailed, err)
	}
	return t, nil
}

func checkMutable(sl, invalidMsg string) error {
	switch err := slug.Check(sl); {
	case errors.Is(err, slug.ErrInvalid):
		return apperr.InvalidSlugErr(invalidMsg)
	case errors.Is(err, slug.ErrReserved):
		return apperr.ReservedSlugErr(msgReserved)
	}
	return nil
}

// decodeObject parses a JSON object body. An empty body is an empty object.
func decodeObject(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("body is not a JSON object")
	}
	return m, nil
}
