package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlopslab/mlopsctl/pkg/utils"
)

// Placeholder is the token in manifest templates to be replaced
// with the image version of a deployment.
const Placeholder = "{{VERSION}}"

// DefaultDir is where manifest templates live in a checkout.
const DefaultDir = "k8s"

// DefaultRequired are the manifest files a deployable checkout must have.
var DefaultRequired = []string{
	"deployment.yaml",
	"service.yaml",
	"configmap.yaml",
	"mlflow-deployment.yaml",
	"mlflow-service.yaml",
}

var (
	ErrNoManifests     = errors.New("no manifest files found")
	ErrMissingManifest = errors.New("missing manifest file")
)

// Template is a single manifest file, as read from disk.
type Template struct {
	// filename, relative to the directory the Set was loaded from.
	Name string

	Raw []byte
}

// Set is every manifest template under one directory.
type Set struct {
	// directory the templates were loaded from.
	Dir string

	Templates []Template
}

// Load reads all *.yaml / *.yml files directly under dir, in filename order.
func Load(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Set{}, fmt.Errorf("failed to read manifest directory %s: %w", dir, err)
	}

	set := Set{Dir: dir}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return Set{}, fmt.Errorf("failed to read manifest %s: %w", name, err)
		}
		set.Templates = append(set.Templates, Template{Name: name, Raw: raw})
	}

	if len(set.Templates) == 0 {
		return Set{}, fmt.Errorf("%w: in %s", ErrNoManifests, dir)
	}

	return set, nil
}

// Verify checks that every required file is in the Set.
//
// On failure, the error names all missing files at once.
func (s Set) Verify(required []string) error {
	found := utils.ToMap(s.Templates, func(t Template) string { return t.Name })

	missing := []string{}
	for _, name := range required {
		if _, ok := found[name]; !ok {
			missing = append(missing, name)
		}
	}
	if 0 < len(missing) {
		return fmt.Errorf("%w: %s", ErrMissingManifest, strings.Join(missing, ", "))
	}
	return nil
}

// Rendered is a manifest with its version placeholder substituted.
type Rendered struct {
	Name string
	Body []byte
}

// Render substitutes every occurrence of Placeholder with version.
//
// Rendering is idempotent: the output contains no placeholder, so
// rendering an already-rendered body with the same version is a no-op.
func (s Set) Render(version string) []Rendered {
	return utils.Map(s.Templates, func(t Template) Rendered {
		return Rendered{
			Name: t.Name,
			Body: bytes.ReplaceAll(t.Raw, []byte(Placeholder), []byte(version)),
		}
	})
}

// WriteDir writes rendered manifests into dir, one file per Rendered.
//
// Pass a staging directory to keep checked-in templates untouched,
// or the Set's own Dir for the legacy in-place substitution.
func WriteDir(rendered []Rendered, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	for _, r := range rendered {
		dest := filepath.Join(dir, r.Name)
		if err := os.WriteFile(dest, r.Body, 0o644); err != nil {
			return fmt.Errorf("failed to write manifest %s: %w", dest, err)
		}
	}
	return nil
}
