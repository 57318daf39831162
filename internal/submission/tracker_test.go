package submission_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeanon/internal/submission"
)

func TestEnterDirOpensAtConfiguredLevel(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dest := filepath.Join(base, "dest")
	groupA := filepath.Join(src, "groupA")
	if err := os.MkdirAll(groupA, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tr := submission.NewTracker(src, dest, 1)

	if root, err := tr.EnterDir(src); err != nil || root != nil {
		t.Fatalf("scan root must not open a submission at level 1: %v %v", root, err)
	}

	root, err := tr.EnterDir(groupA)
	if err != nil {
		t.Fatalf("EnterDir: %v", err)
	}
	if root == nil {
		t.Fatal("expected submission to open")
	}
	if root.Number != 0 {
		t.Fatalf("numbering must start at 0, got %d", root.Number)
	}
	want := filepath.Join(dest, "submission_00")
	if root.Dest != want {
		t.Fatalf("dest = %q, want %q", root.Dest, want)
	}
	if info, err := os.Stat(root.Dest); err != nil || !info.IsDir() {
		t.Fatalf("destination directory not created: %v", err)
	}
	if tr.Active() != root {
		t.Fatal("tracker must report the opened root as active")
	}
}

func TestNumberingFollowsEncounterOrder(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dest := filepath.Join(base, "dest")
	tr := submission.NewTracker(src, dest, 1)

	names := []string{"zeta", "alpha", "mid"}
	for i, name := range names {
		dir := filepath.Join(src, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		tr.Leave(dir)
		root, err := tr.EnterDir(dir)
		if err != nil {
			t.Fatalf("EnterDir(%s): %v", name, err)
		}
		if root == nil || root.Number != i {
			t.Fatalf("submission %s: got %+v, want number %d", name, root, i)
		}
		if filepath.Base(root.Dest) != "submission_0"+string(rune('0'+i)) {
			t.Fatalf("unexpected dest name: %s", root.Dest)
		}
	}
}

func TestLeaveClosesWhenExitingSubtree(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dest := filepath.Join(base, "dest")
	groupA := filepath.Join(src, "groupA")
	tr := submission.NewTracker(src, dest, 1)
	if err := os.MkdirAll(filepath.Join(groupA, "inner"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, err := tr.EnterDir(groupA); err != nil {
		t.Fatalf("EnterDir: %v", err)
	}

	tr.Leave(filepath.Join(groupA, "inner"))
	if tr.Active() == nil {
		t.Fatal("descending inside the subtree must not close the submission")
	}

	tr.Leave(filepath.Join(src, "groupB"))
	if tr.Active() != nil {
		t.Fatal("leaving the subtree must close the submission")
	}
}

func TestEnterArchiveStandsInForSubmissionDir(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dest := filepath.Join(base, "dest")
	course := filepath.Join(src, "course")
	if err := os.MkdirAll(course, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	archivePath := filepath.Join(course, "student.zip")

	tr := submission.NewTracker(src, dest, 2)
	root, err := tr.EnterArchive(archivePath)
	if err != nil {
		t.Fatalf("EnterArchive: %v", err)
	}
	if root == nil {
		t.Fatal("archive at level-1 must open a submission")
	}
	if root.Source != archivePath {
		t.Fatalf("source = %q, want the archive path", root.Source)
	}
	want := filepath.Join(dest, "course", "submission_00")
	if root.Dest != want {
		t.Fatalf("dest = %q, want %q", root.Dest, want)
	}

	// The next sibling archive forms its own submission once the first closes.
	tr.Leave(course)
	if tr.Active() != nil {
		t.Fatal("containing dir is outside the archive submission")
	}
	second, err := tr.EnterArchive(filepath.Join(course, "other.zip"))
	if err != nil {
		t.Fatalf("second EnterArchive: %v", err)
	}
	if second == nil || second.Number != 1 {
		t.Fatalf("expected submission 1, got %+v", second)
	}
}

func TestEnterArchiveIgnoresWrongDepth(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dest := filepath.Join(base, "dest")
	tr := submission.NewTracker(src, dest, 1)

	// Depth 1 archive with level 1 requires depth 0 containment; this one is
	// inside a depth-1 directory.
	if root, err := tr.EnterArchive(filepath.Join(src, "groupA", "code.zip")); err != nil || root != nil {
		t.Fatalf("archive below level-1 must not open a submission: %v %v", root, err)
	}
}

func TestLevelZeroTreatsScanRootAsSubmission(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dest := filepath.Join(base, "dest")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tr := submission.NewTracker(src, dest, 0)
	root, err := tr.EnterDir(src)
	if err != nil {
		t.Fatalf("EnterDir: %v", err)
	}
	if root == nil {
		t.Fatal("scan root must open at level 0")
	}
	if want := filepath.Join(dest, "submission_00"); root.Dest != want {
		t.Fatalf("dest = %q, want %q", root.Dest, want)
	}
}

func TestOnlyOneActiveSubmission(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dest := filepath.Join(base, "dest")
	groupA := filepath.Join(src, "groupA")
	if err := os.MkdirAll(filepath.Join(groupA, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tr := submission.NewTracker(src, dest, 1)
	first, err := tr.EnterDir(groupA)
	if err != nil || first == nil {
		t.Fatalf("EnterDir: %v %v", first, err)
	}

	// While active, deeper directories never open a second submission.
	if root, err := tr.EnterDir(filepath.Join(groupA, "sub")); err != nil || root != nil {
		t.Fatalf("nested dir must not open: %v %v", root, err)
	}
	if tr.Active() != first {
		t.Fatal("active submission changed unexpectedly")
	}
}
