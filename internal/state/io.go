package state

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DecodeAnnotation reads a JSON array of lines. Degenerate lines are
// dropped.
func DecodeAnnotation(r io.Reader) (Annotation, error) {
	var a Annotation
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode annotation: %w", err)
	}
	return a.Compact(), nil
}

// LoadAnnotationFile reads an annotation from a JSON file.
func LoadAnnotationFile(path string) (Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := DecodeAnnotation(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// LoadAnnotationFiles reads one layer per path, in order.
func LoadAnnotationFiles(paths []string) ([]Annotation, error) {
	layers := make([]Annotation, 0, len(paths))
	for _, p := range paths {
		a, err := LoadAnnotationFile(p)
		if err != nil {
			return nil, err
		}
		layers = append(layers, a)
	}
	return layers, nil
}
