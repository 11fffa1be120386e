// Package chart holds the default chart of accounts provisioned for new users.
package chart

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/isdelr/ledger-be/internal/models"
)

//go:embed default_chart.yaml
var defaultChartYAML []byte

// Template is a chart entry without an owner or id.
type Template struct {
	Code string             `yaml:"code"`
	Name string             `yaml:"name"`
	Type models.AccountType `yaml:"type"`
}

type chartFile struct {
	Accounts []Template `yaml:"accounts"`
}

var defaultChart = mustParse(defaultChartYAML)

// Default returns a copy of the default chart of accounts.
func Default() []Template {
	out := make([]Template, len(defaultChart))
	copy(out, defaultChart)
	return out
}

// Read parses a chart file and validates it.
func Read(r io.Reader) ([]Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading chart: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]Template, error) {
	var f chartFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing chart: %w", err)
	}

	seen := make(map[string]bool, len(f.Accounts))
	for i, t := range f.Accounts {
		if t.Code == "" || t.Name == "" {
			return nil, fmt.Errorf("chart row %d: code and name are required", i+1)
		}
		if !t.Type.Valid() {
			return nil, fmt.Errorf("chart row %d: invalid account type %q", i+1, t.Type)
		}
		if seen[t.Code] {
			return nil, fmt.Errorf("chart row %d: duplicate code %s", i+1, t.Code)
		}
		seen[t.Code] = true
	}
	return f.Accounts, nil
}

func mustParse(data []byte) []Template {
	accts, err := parse(data)
	if err != nil {
		panic(err)
	}
	return accts
}

// Load reads a chart file from disk.
func Load(path string) ([]Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart: %w", err)
	}
	defer f.Close()
	return Read(f)
}
