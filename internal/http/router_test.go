package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yengalvez/tour360/internal/config"
	"github.com/yengalvez/tour360/internal/modules/tours"
	"github.com/yengalvez/tour360/internal/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type testServer struct {
	router *gin.Engine
	dir    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{MaxUploadMB: 1}
	svc := tours.NewService(tours.NewStore(storage.NewLocal(dir, "/tours")), nil)
	return &testServer{router: NewRouter(discardLogger(), cfg, svc), dir: dir}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req)
}

func (s *testServer) upload(t *testing.T, path, filename, sceneName string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("scene", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	if sceneName != "" {
		require.NoError(t, mw.WriteField("sceneName", sceneName))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(t, req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["error"].(string)
}

func TestCreateTour(t *testing.T) {
	s := newTestServer(t)

	w := s.postJSON(t, "/api/create-tour", `{"name":"Casa Bonita "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	tour := decode[tours.TourView](t, w)
	assert.Equal(t, "casa-bonita", tour.Slug)
	assert.Equal(t, "Casa Bonita", tour.Title)
	assert.Nil(t, tour.InitialSceneID)
	assert.Empty(t, tour.Scenes)
	assert.FileExists(t, filepath.Join(s.dir, "casa-bonita", "tour.json"))

	w = s.postJSON(t, "/api/tours", `{"name":"casa bonita"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Ya existe un tour con este nombre", errorOf(t, w))
}

func TestCreateTourRejectsBadNames(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
		msg  string
	}{
		{"reserved", `{"name":"api"}`, http.StatusBadRequest, "Este nombre está reservado, elige otro"},
		{"blank", `{"name":"   "}`, http.StatusBadRequest, "Elige un nombre válido para tu tour"},
		{"only symbols", `{"name":"!!!"}`, http.StatusBadRequest, "Elige un nombre válido para tu tour"},
		{"empty body", ``, http.StatusBadRequest, "Elige un nombre válido para tu tour"},
		{"bad json", `{"name":`, http.StatusBadRequest, "JSON inválido"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.postJSON(t, "/api/create-tour", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Equal(t, tt.msg, errorOf(t, w))
		})
	}

	_, err := os.Stat(filepath.Join(s.dir, "api"))
	assert.True(t, os.IsNotExist(err))
}

func TestCreateTourFieldErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.postJSON(t, "/api/create-tour", `{"name":"`+strings.Repeat("a", 300)+`"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]any](t, w)
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok, w.Body.String())
	assert.Contains(t, fields, "name")
}

func TestGetTour(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.postJSON(t, "/api/create-tour", `{"name":"Casa Bonita"}`).Code)

	for _, path := range []string{"/api/get-tour?slug=casa-bonita", "/api/tours/casa-bonita", "/api/get-tour?slug=CASA-BONITA"} {
		w := s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
		tour := decode[tours.TourView](t, w)
		assert.Equal(t, "casa-bonita", tour.Slug)
		assert.Equal(t, "/tours/casa-bonita", tour.FolderPath)
	}

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/get-tour?slug=nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Tour no encontrado", errorOf(t, w))

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/api/get-tour?slug=..%2Fetc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Tour inválido", errorOf(t, w))
}

func TestUploadScene(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.postJSON(t, "/api/create-tour", `{"name":"Casa Bonita"}`).Code)

	w := s.upload(t, "/api/upload-scene?slug=casa-bonita", "Living Room.jpg", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[tours.UploadResult](t, w)

	assert.Regexp(t, `^scene-[0-9a-f]{12}$`, res.Scene.ID)
	assert.Equal(t, "Living Room", res.Scene.Name)
	assert.Regexp(t, `^scene-[0-9a-f]{12}\.jpg$`, res.Scene.File)
	assert.Equal(t, "/tours/casa-bonita/"+res.Scene.File, res.Scene.URL)
	require.NotNil(t, res.Tour.InitialSceneID)
	assert.Equal(t, res.Scene.ID, *res.Tour.InitialSceneID)
	assert.FileExists(t, filepath.Join(s.dir, "casa-bonita", res.Scene.File))

	w = s.upload(t, "/api/tours/casa-bonita/upload", "kitchen.png", "Cocina")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[tours.UploadResult](t, w)
	assert.Equal(t, "Cocina", second.Scene.Name)
	assert.Len(t, second.Tour.Scenes, 2)
	assert.Equal(t, res.Scene.ID, *second.Tour.InitialSceneID)
}

func TestUploadSceneErrors(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.postJSON(t, "/api/create-tour", `{"name":"Casa Bonita"}`).Code)

	w := s.upload(t, "/api/upload-scene?slug=casa-bonita", "anim.gif", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Formato de imagen no permitido", errorOf(t, w))

	w = s.upload(t, "/api/upload-scene?slug=casa-bonita", "", "Nada")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No se recibió ningún archivo", errorOf(t, w))

	w = s.upload(t, "/api/upload-scene?slug=missing", "a.jpg", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.upload(t, "/api/upload-scene?slug=api", "a.jpg", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	entries, err := os.ReadDir(filepath.Join(s.dir, "casa-bonita"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only tour.json should exist")
}

func TestSaveTourRoundTrip(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.postJSON(t, "/api/create-tour", `{"name":"Casa Bonita"}`).Code)
	a := decode[tours.UploadResult](t, s.upload(t, "/api/upload-scene?slug=casa-bonita", "a.jpg", "Salón"))
	b := decode[tours.UploadResult](t, s.upload(t, "/api/upload-scene?slug=casa-bonita", "b.webp", "Cocina"))

	payload := map[string]any{
		"title":          "Casa <Bonita> & co",
		"initialSceneId": b.Scene.ID,
		"scenes": []any{
			map[string]any{
				"id": a.Scene.ID, "name": "Salón", "file": a.Scene.File,
				"hotspots": []any{
					map[string]any{"label": "Ir a cocina", "targetSceneId": b.Scene.ID, "yaw": 1.25, "pitch": "-0.5"},
					map[string]any{"label": "roto", "yaw": "abc", "pitch": 0},
				},
			},
			map[string]any{"id": b.Scene.ID, "name": "Cocina", "file": b.Scene.File},
			map[string]any{"id": "ghost", "name": "Fantasma", "file": "ghost.jpg"},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	w := s.postJSON(t, "/api/tours/casa-bonita/save", string(raw))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Casa <Bonita> & co")

	saved := decode[tours.TourView](t, w)
	require.Len(t, saved.Scenes, 2)
	assert.Equal(t, b.Scene.ID, *saved.InitialSceneID)
	require.Len(t, saved.Scenes[0].Hotspots, 1)
	hs := saved.Scenes[0].Hotspots[0]
	assert.Equal(t, "Ir a cocina", hs.Label)
	assert.Equal(t, 1.25, hs.Yaw)
	assert.Equal(t, -0.5, hs.Pitch)
	assert.Regexp(t, `^hotspot-[0-9a-f]{8}$`, hs.ID)

	got := decode[tours.TourView](t, s.do(t, httptest.NewRequest(http.MethodGet, "/api/get-tour?slug=casa-bonita", nil)))
	assert.Equal(t, saved, got)
}

func TestSaveTourErrors(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.postJSON(t, "/api/create-tour", `{"name":"Casa Bonita"}`).Code)

	w := s.postJSON(t, "/api/save-tour?slug=casa-bonita", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "JSON inválido", errorOf(t, w))

	w = s.postJSON(t, "/api/save-tour?slug=nope", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.postJSON(t, "/api/save-tour?slug=static", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestViewerPages(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.postJSON(t, "/api/create-tour", `{"name":"Casa Bonita"}`).Code)

	for _, path := range []string{"/casa-bonita", "/tours/casa-bonita", "/Casa-Bonita"} {
		w := s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), `id="tour-data"`)
		assert.Contains(t, w.Body.String(), `"slug":"casa-bonita"`)
		assert.Contains(t, w.Body.String(), "/static/js/viewer.js")
	}

	for _, path := range []string{"/otra-casa", "/tours/otra-casa", "/a/b/c"} {
		w := s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "404")
	}
}

func TestEditorAndStatic(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="createTourForm"`)
	assert.Contains(t, w.Body.String(), "/static/js/editor.js")

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/static/js/editor.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSceneAsset(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.postJSON(t, "/api/create-tour", `{"name":"Casa Bonita"}`).Code)
	res := decode[tours.UploadResult](t, s.upload(t, "/api/upload-scene?slug=casa-bonita", "a.jpg", ""))

	w := s.do(t, httptest.NewRequest(http.MethodGet, res.Scene.URL, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "fake image bytes", w.Body.String())

	w = s.do(t, httptest.NewRequest(http.MethodGet, "/tours/casa-bonita/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/create-tour", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Método no permitido", errorOf(t, w))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/get-tour?slug=nope", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := s.do(t, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestJSONBodiesAreCapped(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.postJSON(t, "/api/create-tour", `{"name":"Casa Bonita"}`).Code)

	huge := `{"title":"` + strings.Repeat("a", maxTourJSONBytes) + `"}`
	for _, path := range []string{"/api/save-tour?slug=casa-bonita", "/api/tours/casa-bonita/save"} {
		w := s.postJSON(t, path, huge)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "La petición es demasiado grande", errorOf(t, w))
	}

	w := s.postJSON(t, "/api/create-tour", `{"name":"otra","title":"`+strings.Repeat("a", maxTourJSONBytes)+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "La petición es demasiado grande", errorOf(t, w))

	got := decode[tours.TourView](t, s.do(t, httptest.NewRequest(http.MethodGet, "/api/get-tour?slug=casa-bonita", nil)))
	assert.Equal(t, "Casa Bonita", got.Title)
}
