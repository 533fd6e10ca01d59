package reconcile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules holds the business constants the reconciliation runs on.
// The zero value is not usable; start from DefaultRules.
type Rules struct {
	ActiveStatus  string `yaml:"active_status"`
	ActiveProduct string `yaml:"active_product"`
	GroupWord     string `yaml:"group_word"`
	CurrentWord   string `yaml:"current_word"`
	CancelledWord string `yaml:"cancelled_word"`
	CurrentTag    string `yaml:"current_tag"`
	CancelledTag  string `yaml:"cancelled_tag"`
}

func DefaultRules() Rules {
	return Rules{
		ActiveStatus:  "enabled",
		ActiveProduct: "PBL Online Subscription",
		GroupWord:     "members",
		CurrentWord:   "current",
		CancelledWord: "cancelled",
		CurrentTag:    "current members",
		CancelledTag:  "cancelled members",
	}
}

// LoadRules reads a YAML rules file. Keys missing from the file keep their
// default value. An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if err := rules.validate(); err != nil {
		return rules, err
	}
	return rules, nil
}

func (r Rules) validate() error {
	required := map[string]string{
		"active_status":  r.ActiveStatus,
		"active_product": r.ActiveProduct,
		"group_word":     r.GroupWord,
		"current_word":   r.CurrentWord,
		"cancelled_word": r.CancelledWord,
		"current_tag":    r.CurrentTag,
		"cancelled_tag":  r.CancelledTag,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("rules file: %s must not be empty", key)
		}
	}
	return nil
}
