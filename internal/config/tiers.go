package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/texdup/internal/detect"
	"github.com/zjrosen/texdup/internal/log"
)

//go:embed schema/config.json
var schemaJSON []byte

const schemaURL = "https://texdup.local/config.json"

// ErrInvalidTier marks a config file that does not match the schema.
var ErrInvalidTier = errors.New("invalid config file")

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func configSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parsing embedded schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("adding embedded schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Tier is the parsed exclusion list of one config file.
type Tier struct {
	Path       string
	Exclusions []string
	// Present is false when the file has no exclusions key.
	Present bool
}

// ValidateData checks YAML config content against the embedded schema.
func ValidateData(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTier, err)
	}
	if raw == nil {
		return nil
	}

	// Round-trip through JSON so the validator sees JSON types only.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTier, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTier, err)
	}

	schema, err := configSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTier, err)
	}
	return nil
}

// ValidateFile reads and validates one config file.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the user
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := ValidateData(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadTier reads the exclusion list of path. A missing file is an empty,
// absent tier, not an error.
func LoadTier(path string) (Tier, error) {
	tier := Tier{Path: path}
	if path == "" {
		return tier, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from config lookup
	if errors.Is(err, os.ErrNotExist) {
		return tier, nil
	}
	if err != nil {
		return tier, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := ValidateData(data); err != nil {
		return tier, fmt.Errorf("%s: %w", path, err)
	}

	var file struct {
		Exclusions *[]string `yaml:"exclusions"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return tier, fmt.Errorf("%s: %w: %v", path, ErrInvalidTier, err)
	}
	if file.Exclusions != nil {
		tier.Present = true
		tier.Exclusions = *file.Exclusions
	}
	return tier, nil
}

// LoadVocabulary builds the exclusion vocabulary from the global and project
// tiers. A global tier without an exclusions key uses DefaultExclusions. A
// tier that cannot be read or validated contributes nothing.
func LoadVocabulary(globalPath, projectPath string) *detect.Vocabulary {
	global, err := LoadTier(globalPath)
	switch {
	case err != nil:
		log.Warn(log.CatConfig, "ignoring global exclusions", "path", globalPath, "error", err)
		global = Tier{Path: globalPath}
	case !global.Present:
		global.Exclusions = DefaultExclusions()
	}

	project := Tier{Path: projectPath}
	if projectPath != globalPath {
		project, err = LoadTier(projectPath)
		if err != nil {
			log.Warn(log.CatConfig, "ignoring project exclusions", "path", projectPath, "error", err)
			project = Tier{Path: projectPath}
		}
	}

	vocab := detect.NewVocabulary(global.Exclusions, project.Exclusions)
	log.Debug(log.CatConfig, "exclusion vocabulary loaded",
		"global", len(global.Exclusions), "project", len(project.Exclusions), "total", vocab.Len())
	return vocab
}

// NewDetector builds the duplicate detector for cfg and the given tiers.
func NewDetector(cfg Config, globalPath, projectPath string) *detect.Duplicates {
	return detect.NewDuplicates(
		LoadVocabulary(globalPath, projectPath),
		detect.WithScope(cfg.ScopeValue()),
	)
}
