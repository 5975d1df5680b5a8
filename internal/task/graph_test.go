package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func dep(from, to int) *Dependency {
	return &Dependency{From: from, To: to, Type: FinishToStart}
}

func TestHasCycle(t *testing.T) {
	tests := []struct {
		name string
		deps []*Dependency
		want bool
	}{
		{"empty", nil, false},
		{"single edge", []*Dependency{dep(1, 2)}, false},
		{"chain", []*Dependency{dep(1, 2), dep(2, 3), dep(3, 4)}, false},
		{"diamond", []*Dependency{dep(1, 2), dep(1, 3), dep(2, 4), dep(3, 4)}, false},
		{"self loop", []*Dependency{dep(1, 1)}, true},
		{"two cycle", []*Dependency{dep(1, 2), dep(2, 1)}, true},
		{"long cycle", []*Dependency{dep(1, 2), dep(2, 3), dep(3, 4), dep(4, 1)}, true},
		{"cycle off main chain", []*Dependency{dep(1, 2), dep(3, 4), dep(4, 5), dep(5, 3)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasCycle(tt.deps))
		})
	}
}

func TestCyclePath(t *testing.T) {
	assert.Nil(t, CyclePath([]*Dependency{dep(1, 2), dep(2, 3)}))

	path := CyclePath([]*Dependency{dep(1, 2), dep(2, 3), dep(3, 1)})
	assert.Len(t, path, 4, "closed walk repeats the entry node")
	assert.Equal(t, path[0], path[len(path)-1])
}

func TestBuildAdjacency(t *testing.T) {
	adj := BuildAdjacency([]*Dependency{dep(1, 2), dep(1, 3), dep(2, 3)})
	assert.Equal(t, []int{2, 3}, adj[1])
	assert.Equal(t, []int{3}, adj[2])
	assert.Empty(t, adj[3])
}
