package cache

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/piwi3910/TabBox/internal/model"
)

const keyPrefix = "tabbox:v1"

type keyInput struct {
	Design   model.Design         `json:"design"`
	Settings model.OutputSettings `json:"settings"`
}

// Key returns the cache key for one rendered output of a design. Fields
// that do not change the geometry (ID, CreatedAt) are left out of the hash,
// so saved copies of the same design share entries.
func Key(format string, d model.Design, s model.OutputSettings) (string, error) {
	d.ID = ""
	d.CreatedAt = ""
	canon, err := json.Marshal(keyInput{Design: d, Settings: s})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := xxhash.Sum64(canon)
	return fmt.Sprintf("%s:%s:%016x", keyPrefix, sanitize(format), sum), nil
}

func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		out := '-'
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			out = r
		}
		if out == '-' && prev == '-' {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}
