package api

import (
	"math/rand/v2"
	"net/url"
	"regexp"
)

var (
	scenePathRe = regexp.MustCompile(`(?i)/scene/([a-f0-9]+)`)
	tourPathRe  = regexp.MustCompile(`(?i)/editor/([a-f0-9]+)`)
)

const fakeIDChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ExtractSceneID returns the scene id of an editor URL: the last
// /scene/<hex> path segment, else the scene_id query parameter.
func ExtractSceneID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if m := scenePathRe.FindAllStringSubmatch(u.Path, -1); len(m) > 0 {
		return m[len(m)-1][1]
	}
	return u.Query().Get("scene_id")
}

// ExtractTourID returns the tour id of an editor URL: the /editor/<hex> path
// segment, else the tour_id query parameter.
func ExtractTourID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if m := tourPathRe.FindStringSubmatch(u.Path); m != nil {
		return m[1]
	}
	return u.Query().Get("tour_id")
}

// FakeHotspotID returns a placeholder id of the form "fake-p_" followed by 20
// alphanumerics. The service replaces it with its own id.
func FakeHotspotID() string {
	b := make([]byte, 20)
	for i := range b {
		b[i] = fakeIDChars[rand.IntN(len(fakeIDChars))]
	}
	return "fake-p_" + string(b)
}
