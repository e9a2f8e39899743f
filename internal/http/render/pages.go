package render

import (
	"fmt"
	"net/http"

	"github.com/a-h/templ"
)

const (
	cdnBase      = "https://cdn.jsdelivr.net/npm/"
	psvVersion   = "photo-sphere-viewer@4.8.1"
	threeVersion = "three@0.147.0"
)

var (
	pageStyles = []string{
		cdnBase + psvVersion + "/dist/photo-sphere-viewer.min.css",
		cdnBase + psvVersion + "/dist/plugins/markers.min.css",
		"/static/css/app.css",
	}
	panoramaScripts = []string{
		cdnBase + threeVersion + "/build/three.min.js",
		cdnBase + "uevent@2.2.0/browser.min.js",
		cdnBase + psvVersion + "/dist/photo-sphere-viewer.min.js",
		cdnBase + psvVersion + "/dist/plugins/markers.min.js",
	}
)

// EditorPage is the single page tour editor served at "/".
func EditorPage() templ.Component {
	return page(pageProps{
		Title:     "Tour 360 · Editor",
		BodyClass: "editor",
		Styles:    pageStyles,
		Scripts:   append(panoramaScripts[:len(panoramaScripts):len(panoramaScripts)], "/static/js/editor.js"),
	}, templ.Raw(editorBody))
}

// ViewerPage is the public read-only viewer. The slug is handed to the
// script as JSON so it never has to be parsed back out of the URL.
func ViewerPage(slug string) templ.Component {
	return page(pageProps{
		Title:     "Tour 360",
		BodyClass: "viewer",
		Styles:    pageStyles,
		Scripts:   append(panoramaScripts[:len(panoramaScripts):len(panoramaScripts)], "/static/js/viewer.js"),
	}, templ.Join(
		templ.JSONScript("tour-data", map[string]string{"slug": slug}),
		templ.Raw(viewerBody),
	))
}

func ErrorPage(status int, msg, requestID string) templ.Component {
	heading := fmt.Sprintf("%d %s", status, http.StatusText(status))
	return page(pageProps{
		Title:     heading,
		BodyClass: "error-page",
		Styles:    []string{"/static/css/app.css"},
	}, element("main", `class="panel"`,
		element("h1", "", text(heading)),
		element("p", "", text(msg)),
		element("p", `class="muted"`, text("Request ID: "+requestID)),
		element("p", "", templ.Raw(`<a href="/">Volver al editor</a>`)),
	))
}

type pageProps struct {
	Title     string
	BodyClass string
	Styles    []string
	Scripts   []string
}

// page wraps body in the shared document shell.
func page(p pageProps, body templ.Component) templ.Component {
	head := []templ.Component{
		templ.Raw(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`),
		element("title", "", text(p.Title)),
	}
	for _, href := range p.Styles {
		head = append(head, stylesheet(href))
	}

	content := []templ.Component{body}
	for _, src := range p.Scripts {
		content = append(content, script(src))
	}

	return templ.Join(
		templ.Raw(`<!doctype html><html lang="es">`),
		element("head", "", head...),
		element("body", `class="`+templ.EscapeString(p.BodyClass)+`"`, content...),
		templ.Raw(`</html>`),
	)
}

func stylesheet(href string) templ.Component {
	return templ.Raw(`<link rel="stylesheet" href="` + templ.EscapeString(href) + `">`)
}

func script(src string) templ.Component {
	return templ.Raw(`<script src="` + templ.EscapeString(src) + `"></script>`)
}

// text renders s HTML-escaped.
func text(s string) templ.Component {
	return templ.Raw(templ.EscapeString(s))
}

// element wraps children in <tag attrs>. attrs must already be escaped.
func element(tag, attrs string, children ...templ.Component) templ.Component {
	open := "<" + tag
	if attrs != "" {
		open += " " + attrs
	}
	return templ.Join(
		templ.Raw(open+">"),
		templ.Join(children...),
		templ.Raw("</"+tag+">"),
	)
}

const editorBody = `
<header class="topbar">
  <h1>Tour 360</h1>
  <div class="topbar-info">
    <span id="tourFolderInfo" class="muted"></span>
    <a id="tourPublicLink" class="hidden" target="_blank" rel="noopener"></a>
  </div>
</header>

<main>
  <section id="createPanel" class="panel">
    <h2>Crea tu tour</h2>
    <form id="createTourForm">
      <label>Nombre de la carpeta
        <input id="tourName" name="name" required maxlength="64" autocomplete="off">
      </label>
      <p class="muted">Dirección pública: <code id="slugPreview"></code></p>
      <label>Título (opcional)
        <input id="tourTitle" name="title" maxlength="256">
      </label>
      <button type="submit">Crear tour</button>
    </form>
  </section>

  <section id="workspace" class="workspace hidden">
    <aside class="panel">
      <h2>Escenas</h2>
      <label class="upload">Subir escena 360°
        <input id="sceneUpload" type="file" accept=".jpg,.jpeg,.png,.webp">
      </label>
      <ul id="scenesList" class="scenes"></ul>
      <button id="saveTour" type="button">Guardar tour</button>
    </aside>

    <section class="stage">
      <div class="stage-header">
        <div>
          <h2 id="currentSceneTitle">Sin escena</h2>
          <p id="viewerHint" class="muted">Sube una escena para comenzar</p>
        </div>
        <button id="addHotspot" type="button">Añadir hotspot</button>
      </div>
      <p id="placingNotice" class="notice hidden">Haz clic en la escena para colocar el hotspot (Esc para cancelar)</p>
      <div id="viewer" class="viewer"></div>
    </section>

    <aside class="panel">
      <h2>Hotspots <small id="hotspotCount">0 hotspots</small></h2>
      <ul id="hotspotsList" class="hotspots"></ul>
    </aside>
  </section>
</main>

<div id="sceneModal" class="modal hidden">
  <div class="modal-card">
    <h3>Nueva escena</h3>
    <p class="muted" id="sceneFileName"></p>
    <label>Nombre de la escena <input id="sceneNameInput" maxlength="120"></label>
    <div class="modal-actions">
      <button id="cancelSceneModal" type="button" class="ghost">Cancelar</button>
      <button id="confirmSceneModal" type="button">Subir</button>
    </div>
  </div>
</div>

<div id="hotspotModal" class="modal hidden">
  <div class="modal-card">
    <h3>Nuevo hotspot</h3>
    <label>Etiqueta <input id="hotspotLabel" maxlength="120"></label>
    <label>Escena destino <select id="hotspotTarget"></select></label>
    <div class="modal-actions">
      <button id="cancelHotspot" type="button" class="ghost">Cancelar</button>
      <button id="confirmHotspot" type="button">Añadir</button>
    </div>
  </div>
</div>

<div id="toast" class="toast hidden" role="status"></div>
`

const viewerBody = `
<header class="topbar">
  <div>
    <h1 id="tourTitle">Tour 360</h1>
    <p id="tourSubtitle" class="muted"></p>
  </div>
  <div class="topbar-info">
    <code id="tourPath"></code>
    <select id="sceneSelect" disabled></select>
  </div>
</header>
<main class="viewer-main">
  <div id="viewer" class="viewer viewer-full"></div>
  <p id="viewerMessage" class="message hidden"></p>
</main>
`
