package richtext

import (
	"encoding/json"
	"fmt"
)

// formatVersion is bumped when the serialized shape changes.
const formatVersion = 1

type fileDoc struct {
	Version int     `json:"version"`
	Blocks  []Block `json:"blocks"`
}

// MarshalJSON serializes the content. The cursor and typing style are
// session state and are not persisted.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileDoc{Version: formatVersion, Blocks: d.Blocks})
}

// UnmarshalJSON restores the content and places the cursor at the end.
func (d *Document) UnmarshalJSON(data []byte) error {
	var f fileDoc
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Version > formatVersion {
		return fmt.Errorf("unsupported note format version %d", f.Version)
	}
	d.Blocks = f.Blocks
	d.style = Style{}
	d.revision = 0
	d.MoveCursorToEnd()
	return nil
}
