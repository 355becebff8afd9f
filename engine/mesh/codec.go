package mesh

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

/**
 * @brief Encode writes the value in gob form. MeshData is plain data, so
 * imported results can be stored once and constructed many times without
 * re-running extraction.
 */
func (d *MeshData) Encode(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("failed to encode mesh data: %w", err)
	}
	return nil
}

// Decode reads a gob encoded value produced by Encode.
func (d *MeshData) Decode(r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(d); err != nil {
		return fmt.Errorf("failed to decode mesh data: %w", err)
	}
	return nil
}

// SaveFile encodes the value into a file, truncating any existing content.
func (d *MeshData) SaveFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create `%s`: %w", path, err)
	}
	defer file.Close()
	return d.Encode(file)
}

// LoadFile decodes a value previously written with SaveFile.
func LoadFile(path string) (MeshData, error) {
	file, err := os.Open(path)
	if err != nil {
		return MeshData{}, fmt.Errorf("failed to open `%s`: %w", path, err)
	}
	defer file.Close()

	out := MeshData{}
	if err := out.Decode(file); err != nil {
		return MeshData{}, err
	}
	return out, nil
}
