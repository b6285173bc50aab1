package main

import "testing"

func TestRootCmdHasExpectedSubcommands(t *testing.T) {
	root := newRootCmd()

	want := map[string]bool{"build": false, "resume": false, "version": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected a %q subcommand", name)
		}
	}
}

func TestBuildCmdRequiresExactlyOneArg(t *testing.T) {
	cmd := newBuildCmd()
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("expected an error with zero args")
	}
	if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
		t.Error("expected an error with two args")
	}
	if err := cmd.Args(cmd, []string{"only-one"}); err != nil {
		t.Errorf("expected no error with one arg, got %v", err)
	}
}

func TestRunBuildRejectsMissingInputDir(t *testing.T) {
	var bf buildFlags
	if err := runBuild("/nonexistent/path/for/ctharvester-tests", bf, false); err == nil {
		t.Error("expected an error for a missing input directory")
	}
}

func TestRunBuildResumeRequiresExistingOutputDir(t *testing.T) {
	srcDir := t.TempDir()
	bf := buildFlags{outputDir: srcDir + "/.thumbnail"}
	if err := runBuild(srcDir, bf, true); err == nil {
		t.Error("expected an error when resuming without an existing output directory")
	}
}
