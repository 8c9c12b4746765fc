package input

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pratham7049/azure-pricing-calculator/core/engine"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// Envelope is a decoded profile together with where it came from.
// CLI and API both produce one; the engine consumes its Request.
type Envelope struct {
	Source  SourceInfo
	Profile *Profile

	// ContentHash identifies the profile bytes
	ContentHash string

	CreatedAt time.Time
}

// SourceInfo describes where the profile came from
type SourceInfo struct {
	Type SourceType
	Path string
}

// SourceType indicates the source of input
type SourceType int

const (
	SourceCLI SourceType = iota
	SourceAPI
)

// String returns the source type name
func (t SourceType) String() string {
	switch t {
	case SourceCLI:
		return "cli"
	case SourceAPI:
		return "api"
	default:
		return "unknown"
	}
}

// FromFile reads a profile from disk
func FromFile(path string) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Input("read profile: " + err.Error())
	}
	return FromBytes(SourceInfo{Type: SourceCLI, Path: path}, data)
}

// FromBytes decodes a profile delivered in memory. The source path only
// selects the syntax and labels diagnostics.
func FromBytes(source SourceInfo, data []byte) (*Envelope, error) {
	name := source.Path
	if name == "" {
		name = "profile.hcl"
	}
	p, err := ParseProfile(name, data)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Source:      source,
		Profile:     p,
		ContentHash: hashContent(data),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// FromJSON decodes an API request body. Unlike HCL's JSON form, components
// are a list of objects carrying their kind and name.
func FromJSON(data []byte) (*Envelope, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Parsing("decode profile json", err)
	}
	return &Envelope{
		Source:      SourceInfo{Type: SourceAPI},
		Profile:     &p,
		ContentHash: hashContent(data),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Validate reports structural problems that make the envelope unusable
func (env *Envelope) Validate() []string {
	var problems []string
	if env.Source.Type == SourceCLI && env.Source.Path == "" {
		problems = append(problems, "CLI source must have path")
	}
	if env.Profile == nil {
		problems = append(problems, "envelope must have a profile")
	} else if len(env.Profile.Components) == 0 {
		problems = append(problems, "profile declares no components")
	}
	return problems
}

// Request validates the envelope and converts its profile
func (env *Envelope) Request() (engine.Request, error) {
	if problems := env.Validate(); len(problems) > 0 {
		return engine.Request{}, errors.Input(problems[0]).WithContext("problems", problems)
	}
	return env.Profile.Request()
}

func hashContent(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
