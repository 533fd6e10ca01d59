package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules_EmptyPathReturnsDefaults(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("active_product: PBL Online Annual\ncurrent_tag: active members\n"), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, "PBL Online Annual", rules.ActiveProduct)
	assert.Equal(t, "active members", rules.CurrentTag)
	assert.Equal(t, "enabled", rules.ActiveStatus)
	assert.Equal(t, "cancelled members", rules.CancelledTag)
}

func TestLoadRules_RejectsBlankValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("group_word: \"\"\n"), 0o600))

	_, err := LoadRules(path)
	assert.ErrorContains(t, err, "group_word")
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
