package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"start", "migrate", "seed"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("expected %s command, got %v (%v)", name, cmd, err)
		}
	}
}

func TestMigrateAndSeedNeedPostgres(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	for _, args := range [][]string{{"migrate"}, {"migrate", "--rollback"}, {"seed"}} {
		root := newRootCmd()
		root.SetArgs(append(args, "--config", path))
		if err := root.Execute(); !errors.Is(err, errNoPostgres) {
			t.Fatalf("%v: expected missing postgres error, got %v", args, err)
		}
	}
}
