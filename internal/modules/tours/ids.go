package tours

import (
	"crypto/rand"
	"encoding/hex"
)

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func newSceneID() string   { return "scene-" + randHex(6) }
func newHotspotID() string { return "hotspot-" + randHex(4) }

func newSceneFilename(ext string) string {
	return "scene-" + randHex(6) + "." + ext
}
