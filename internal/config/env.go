package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jakoblorz/go-airules/internal/filesystem"
	"github.com/joho/godotenv"
)

// EnvFileName is the dotenv file read from the project root.
const EnvFileName = ".env"

// LookupFunc resolves a variable from the process environment.
type LookupFunc func(key string) (string, bool)

// Environment resolves provider credentials. Process variables win over
// values from the project's .env file.
type Environment struct {
	lookup LookupFunc
	file   map[string]string
}

// NewEnvironment builds an Environment from explicit values. A nil lookup
// means the process environment.
func NewEnvironment(lookup LookupFunc, file map[string]string) *Environment {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if file == nil {
		file = make(map[string]string)
	}
	return &Environment{lookup: lookup, file: file}
}

// LoadEnvironment reads dir/.env when it exists. A missing file is not an
// error.
func LoadEnvironment(fs filesystem.FileSystem, dir string, lookup LookupFunc) (*Environment, error) {
	path := filepath.Join(dir, EnvFileName)
	if !fs.Exists(path) {
		return NewEnvironment(lookup, nil), nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	values, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return NewEnvironment(lookup, values), nil
}

// Get returns the value of key, or "" when it is unset everywhere.
func (e *Environment) Get(key string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return e.file[key]
}

// FileKeys returns the sorted variable names defined in the .env file.
func (e *Environment) FileKeys() []string {
	keys := make([]string, 0, len(e.file))
	for k := range e.file {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
