package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirSink escribe archivos de exportación en un directorio local.
type DirSink struct {
	dir string
}

func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

// Write guarda data como dir/name y devuelve la ruta final.
func (s *DirSink) Write(name string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("nombre de archivo inválido %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de exportación: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("escribir %s: %w", name, err)
	}
	return path, nil
}
