package challenge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/wricardo/robot-challenge/game/engine"
)

// hclChallengeFile is the top-level structure of a .hcl challenge file. One
// file may declare any number of challenge blocks.
type hclChallengeFile struct {
	Challenges []engine.Challenge `hcl:"challenge,block"`
}

// IsChallengeFile reports whether path has a supported challenge extension
func IsChallengeFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".hcl":
		return true
	}
	return false
}

// LoadFile reads every challenge declared in a .json or .hcl file. A JSON file
// holds a single challenge object. Challenges are decoded but not validated.
func LoadFile(path string) ([]*engine.Challenge, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".hcl":
		return loadHCL(path, hclparse.NewParser())
	}
	return nil, fmt.Errorf("unsupported challenge file %s", path)
}

func loadJSON(path string) ([]*engine.Challenge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read challenge file: %w", err)
	}

	var c engine.Challenge
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse challenge file %s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return []*engine.Challenge{&c}, nil
}

func loadHCL(path string, parser *hclparse.Parser) ([]*engine.Challenge, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var parsed hclChallengeFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	challenges := make([]*engine.Challenge, 0, len(parsed.Challenges))
	for i := range parsed.Challenges {
		challenges = append(challenges, &parsed.Challenges[i])
	}
	return challenges, nil
}
