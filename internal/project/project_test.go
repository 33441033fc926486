package project_test

import (
	"reflect"
	"testing"

	"github.com/whirl-wm/whirl/internal/project"
	"github.com/whirl-wm/whirl/internal/wm"
)

func liveWindows(ids ...wm.WindowID) []wm.WindowInfo {
	out := make([]wm.WindowInfo, len(ids))
	for i, id := range ids {
		out[i] = wm.WindowInfo{ID: id, OnScreen: true}
	}
	return out
}

func TestNewStoreHasSystemProject(t *testing.T) {
	s := project.NewStore()
	projects := s.Projects()
	if len(projects) != 1 {
		t.Fatalf("Expected exactly the system project, got %d projects", len(projects))
	}
	if !projects[0].System {
		t.Error("Expected first project to be the system project")
	}
}

func TestValidateRebuildsSystemProject(t *testing.T) {
	s := project.NewStore()
	s.Validate(liveWindows(1, 2, 3))
	if got := s.Projects()[0].Windows; !reflect.DeepEqual(got, []wm.WindowID{1, 2, 3}) {
		t.Errorf("System project windows = %v, want [1 2 3]", got)
	}

	s.Validate(liveWindows(2))
	if got := s.Projects()[0].Windows; !reflect.DeepEqual(got, []wm.WindowID{2}) {
		t.Errorf("System project windows after shrink = %v, want [2]", got)
	}
}

func TestValidatePrunesUserProjects(t *testing.T) {
	s := project.NewStore()
	p := s.Create("Work")
	p.Windows = []wm.WindowID{1, 2, 3}

	s.Validate(liveWindows(1, 3))
	if got := p.Windows; !reflect.DeepEqual(got, []wm.WindowID{1, 3}) {
		t.Errorf("User project windows = %v, want [1 3]", got)
	}

	// A later validation with the window back does not resurrect it.
	s.Validate(liveWindows(1, 2, 3))
	if got := p.Windows; !reflect.DeepEqual(got, []wm.WindowID{1, 3}) {
		t.Errorf("User project windows after regrow = %v, want [1 3]", got)
	}
}

func TestToggleIsIdempotentUnderEvenRepetition(t *testing.T) {
	p := &project.Project{Windows: []wm.WindowID{1, 2}}
	p.Toggle(5)
	p.Toggle(5)
	if got := p.Windows; !reflect.DeepEqual(got, []wm.WindowID{1, 2}) {
		t.Errorf("Membership after double toggle = %v, want [1 2]", got)
	}

	p.Toggle(2)
	p.Toggle(2)
	if !p.Has(2) {
		t.Error("Expected window 2 back in the project after double toggle")
	}
}

func TestCreateUniquifiesNames(t *testing.T) {
	s := project.NewStore()
	s.Create("Work")
	p2 := s.Create("Work")
	if p2.Name == "Work" {
		t.Error("Expected duplicate name to be suffixed")
	}
}

func TestDeleteRefusesSystemProject(t *testing.T) {
	s := project.NewStore()
	if err := s.Delete(s.Projects()[0].ID); err == nil {
		t.Error("Expected deleting the system project to fail")
	}
}

func TestCloneCopiesMembership(t *testing.T) {
	s := project.NewStore()
	p := s.Create("Work")
	p.Windows = []wm.WindowID{4, 5}

	dup, err := s.Clone(p.ID)
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	if !reflect.DeepEqual(dup.Windows, p.Windows) {
		t.Errorf("Clone windows = %v, want %v", dup.Windows, p.Windows)
	}
	dup.Toggle(6)
	if p.Has(6) {
		t.Error("Mutating the clone leaked into the original")
	}
}

func TestMoveKeepsSystemProjectPinned(t *testing.T) {
	s := project.NewStore()
	a := s.Create("A")
	s.Create("B")
	c := s.Create("C")

	s.Move(c.ID, -5)
	if s.Projects()[0].System != true {
		t.Fatal("System project must stay at index 0")
	}
	if s.Projects()[1].ID != c.ID {
		t.Errorf("Expected C clamped to index 1, got %s", s.Projects()[1].Name)
	}

	s.Move(a.ID, 10)
	last := s.Projects()[len(s.Projects())-1]
	if last.ID != a.ID {
		t.Errorf("Expected A clamped to the end, got %s", last.Name)
	}
}

func TestFilterMatchesCaseInsensitive(t *testing.T) {
	s := project.NewStore()
	s.Create("Work")
	s.Create("Personal")

	got := s.Filter("woRK")
	if len(got) != 1 || got[0].Name != "Work" {
		t.Errorf("Filter returned %d projects, want only Work", len(got))
	}
	if len(s.Filter("")) != 3 {
		t.Error("Empty filter should return every project")
	}
}
