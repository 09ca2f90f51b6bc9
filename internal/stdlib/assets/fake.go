package assets

import (
	"testing/fstest"

	"github.com/spellshift/eldritch/internal/agentiface"
	"github.com/spellshift/eldritch/internal/value"
)

// NewFake returns an assets library backed by a small canned in-memory
// filesystem (an empty fake agent, no manifest, no cache-directory watch) so tests
// don't touch the real disk or network (§4.6 fake bindings).
func NewFake() value.Dispatcher {
	fsys := fstest.MapFS{
		"print/main.eldritch": &fstest.MapFile{Data: []byte("print(\"This script just prints\")\n")},
	}
	return New(agentiface.NewFake(), fsys, Manifest{}, "")
}
