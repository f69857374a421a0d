package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// AddExclusions adds words to the exclusions list in configPath, creating the
// file if needed. Words are lower-cased; ones already present are skipped.
// Returns the words actually added.
func AddExclusions(configPath string, words ...string) ([]string, error) {
	var added []string
	err := updateExclusions(configPath, func(current []string) []string {
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" || slices.Contains(current, w) {
				continue
			}
			current = append(current, w)
			added = append(added, w)
		}
		return current
	})
	return added, err
}

// RemoveExclusions removes words from the exclusions list in configPath.
// Returns the words actually removed.
func RemoveExclusions(configPath string, words ...string) ([]string, error) {
	var removed []string
	err := updateExclusions(configPath, func(current []string) []string {
		kept := current[:0]
		for _, c := range current {
			if slices.ContainsFunc(words, func(w string) bool { return strings.EqualFold(strings.TrimSpace(w), c) }) {
				removed = append(removed, c)
				continue
			}
			kept = append(kept, c)
		}
		return kept
	})
	return removed, err
}

// updateExclusions rewrites only the exclusions key. Comments and formatting
// in other sections are preserved by editing the yaml.Node tree.
func updateExclusions(configPath string, edit func([]string) []string) error {
	data, err := os.ReadFile(configPath) // #nosec G304 -- path comes from config lookup
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}
	root := doc.Content[0]

	var current []string
	idx := -1
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == "exclusions" {
			idx = i + 1
			if err := root.Content[idx].Decode(&current); err != nil {
				return fmt.Errorf("decoding exclusions: %w", err)
			}
			break
		}
	}

	listNode := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, w := range edit(current) {
		listNode.Content = append(listNode.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: w})
	}

	if idx >= 0 {
		listNode.HeadComment = root.Content[idx].HeadComment
		listNode.LineComment = root.Content[idx].LineComment
		root.Content[idx] = listNode
	} else {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "exclusions"},
			listNode,
		)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".texdup.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
