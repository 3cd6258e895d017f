package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const maxRootDepth = 8

// walkToRoot visits dir and its parents until one holds go.mod or .git and
// returns that directory.
func walkToRoot(dir string, visit func(string)) (string, bool) {
	for i := 0; i < maxRootDepth; i++ {
		if visit != nil {
			visit(dir)
		}
		if fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

func sourceDir() (string, bool) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", false
	}
	return filepath.Dir(file), true
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}

// ProjectRoot locates the module root from this package's source location,
// falling back to the working directory.
func ProjectRoot() (string, error) {
	if dir, ok := sourceDir(); ok {
		if root, found := walkToRoot(dir, nil); found {
			return root, nil
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	return wd, nil
}

// ProjectPath joins the module root with rel.
func ProjectPath(rel string) (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}
