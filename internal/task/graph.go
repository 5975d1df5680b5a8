package task

// Adjacency maps each task ID to the IDs of its successors.
type Adjacency map[int][]int

// BuildAdjacency builds a successor adjacency map from a dependency list.
func BuildAdjacency(deps []*Dependency) Adjacency {
	adj := make(Adjacency, len(deps))
	for _, d := range deps {
		adj[d.From] = append(adj[d.From], d.To)
	}
	return adj
}

// HasCycle reports whether the dependency graph contains a cycle.
// DFS from every node with a recursion-stack set: revisiting a node that is
// still on the stack signals a cycle.
func HasCycle(deps []*Dependency) bool {
	adj := BuildAdjacency(deps)

	visited := make(map[int]bool)
	onStack := make(map[int]bool)

	var dfs func(id int) bool
	dfs = func(id int) bool {
		if onStack[id] {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		onStack[id] = true
		for _, next := range adj[id] {
			if dfs(next) {
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for from := range adj {
		if dfs(from) {
			return true
		}
	}
	return false
}

// CyclePath returns one dependency cycle as an ID path, or nil if the graph
// is acyclic. Used for diagnostics when rejecting a mutation.
func CyclePath(deps []*Dependency) []int {
	adj := BuildAdjacency(deps)

	visited := make(map[int]bool)
	onStack := make(map[int]bool)
	var path []int

	var dfs func(id int) bool
	dfs = func(id int) bool {
		if onStack[id] {
			path = append(path, id)
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		onStack[id] = true
		for _, next := range adj[id] {
			if dfs(next) {
				path = append(path, id)
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for from := range adj {
		if dfs(from) {
			// Reverse so the path reads in edge direction.
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
	}
	return nil
}
