package confkit

import (
	"os"
	"path/filepath"
)

// ResolvePath expands environment variables in file and anchors relative
// paths at base.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// Section is a config block kept in its own YAML file and referenced from the
// main config by path.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate resolves File against base and loads it with loader. A section
// without a file is left untouched.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}

// ValueOr returns the hydrated value, or def() when nothing was loaded.
func (s Section[T]) ValueOr(def func() *T) *T {
	if s.Value != nil {
		return s.Value
	}
	return def()
}
