// Package artifact generates unique file names for media artifacts.
package artifact

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// Fallback to a timestamp if crypto/rand fails
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// UniqueName inserts a short random suffix between the base name and the
// extension of filename so published artifacts never collide.
// Example: "clip.mp4" -> "clip_a1b2c3d4.mp4"
func UniqueName(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	root := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%s%s", root, randomHex(4), ext)
}

// TempVideoName returns a unique file name for a downloaded video.
// Example: "video_0f3ac2...91.mp4"
func TempVideoName() string {
	return fmt.Sprintf("video_%s.mp4", randomHex(16))
}
