package game

import (
	"strings"
	"testing"

	"github.com/Faultbox/voxelworld/internal/voxel/scheduler"
)

type namedState string

func (n namedState) Name() string       { return string(n) }
func (namedState) Enter() error         { return nil }
func (namedState) Exit() error          { return nil }
func (namedState) Update(float64) error { return nil }
func (namedState) Render() error        { return nil }

func TestTitle(t *testing.T) {
	st := scheduler.Stats{Loaded: 40, GenQueue: 3, MeshQueue: 2}

	tests := []struct {
		name    string
		state   namedState
		hint    bool
		want    []string
		notWant []string
	}{
		{"playing with hint", "playing", true, []string{"seed 42", "60 fps", "chunks 12/40", "queue 3 gen 2 mesh", controlHint}, []string{"playing"}},
		{"loading without hint", "loading", false, []string{"| loading"}, []string{controlHint}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(42, 60, tt.state, st, 12, tt.hint)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Title() = %q, missing %q", got, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("Title() = %q, should not contain %q", got, w)
				}
			}
		})
	}
}
