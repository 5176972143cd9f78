package cmd

import "testing"

func TestRootCmdHasSubcommands(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"captions", "preprocess", "caption-one", "export"} {
		sub, _, err := root.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("Expected subcommand %s, got %v (%v)", name, sub, err)
		}
	}

	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Error("Expected persistent --verbose flag")
	}
}
