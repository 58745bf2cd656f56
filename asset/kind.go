package asset

import (
	"fmt"
	"strings"
)

// Kind classifies the content of an asset. The disk tier uses the kind
// to pick a file extension, so every kind maps to exactly one extension.
type Kind int

const (
	KindTexture Kind = iota
	KindSound
	KindMesh
	KindAnimation
	KindNotecard
	KindScript
	KindObject
	KindClothing
	KindGesture
)

// one entry per Kind, indexed by the kind value.
var kindTable = []struct {
	name string
	ext  string
}{
	{"texture", "tex"},
	{"sound", "ogg"},
	{"mesh", "mesh"},
	{"animation", "anim"},
	{"notecard", "note"},
	{"script", "lsl"},
	{"object", "obj"},
	{"clothing", "cloth"},
	{"gesture", "gest"},
}

func (k Kind) valid() bool {
	return k >= 0 && int(k) < len(kindTable)
}

// String returns the lowercase name of the kind, e.g. "texture".
func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindTable[k].name
}

// Ext returns the canonical file extension for this kind, without the
// leading dot.
func (k Kind) Ext() string {
	if !k.valid() {
		return kindTable[KindObject].ext
	}
	return kindTable[k].ext
}

// KindFromCode maps a numeric wire code to a Kind. Codes this version
// does not know about come back as KindObject, so callers keep working
// when a newer peer sends a newer kind.
func KindFromCode(code int) Kind {
	k := Kind(code)
	if !k.valid() {
		return KindObject
	}
	return k
}

// ParseKind resolves a kind by name ("texture", "sound", ...). The match
// is case-insensitive. Unknown names are an error, unlike unknown
// numeric codes, since a name typo is almost certainly a caller bug.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(s)
	for i := range kindTable {
		if kindTable[i].name == name {
			return Kind(i), nil
		}
	}
	return KindObject, fmt.Errorf("unknown asset kind %q", s)
}

// KindFromExt returns the kind whose canonical extension matches ext
// (without the dot), and whether there was a match.
func KindFromExt(ext string) (Kind, bool) {
	for i := range kindTable {
		if kindTable[i].ext == ext {
			return Kind(i), true
		}
	}
	return KindObject, false
}
