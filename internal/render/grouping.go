package render

// groupWindows partitions floating windows into groups of transitively
// intersecting pixel regions using a flat-array union-find with path
// compression and union-by-minimum-index, so group identity is stable under
// input order. Groups come back ordered by their first member and members
// keep their input order.
func groupWindows(windows []*Window, font Dimensions) [][]*Window {
	parent := make([]int, len(windows))
	for i := range parent {
		parent[i] = i
	}
	regions := make([]Rect, len(windows))
	for i, w := range windows {
		regions[i] = w.PixelRegion(font)
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < len(windows); i++ {
		for j := i + 1; j < len(windows); j++ {
			gi, gj := find(i), find(j)
			if gi != gj && regions[i].Intersects(regions[j]) {
				root := gi
				if gj < root {
					root = gj
				}
				parent[gi] = root
				parent[gj] = root
			}
		}
	}

	order := make([]int, 0, len(windows))
	members := make(map[int][]*Window, len(windows))
	for i, w := range windows {
		root := find(i)
		if _, seen := members[root]; !seen {
			order = append(order, root)
		}
		members[root] = append(members[root], w)
	}

	groups := make([][]*Window, 0, len(order))
	for _, root := range order {
		groups = append(groups, members[root])
	}
	return groups
}
