package assets

import "fmt"

// Kind names the asset flavor an error refers to.
type Kind string

const (
	KindAudio Kind = "audio"
	KindImage Kind = "image"
)

// MissingAssetError reports a per-line file that does not exist.
type MissingAssetError struct {
	Index int
	Kind  Kind
	Path  string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("line %d: missing %s asset %s", e.Index, e.Kind, e.Path)
}

// CorruptAssetError reports a per-line file that exists but cannot be used.
type CorruptAssetError struct {
	Index  int
	Kind   Kind
	Path   string
	Reason string
}

func (e *CorruptAssetError) Error() string {
	return fmt.Sprintf("line %d: corrupt %s asset %s: %s", e.Index, e.Kind, e.Path, e.Reason)
}
