package stats

// DensityCluster assigns points to density-based clusters in the
// manner of DBSCAN
// (Ester, M., et al. (1996). "A density-based algorithm for
// discovering clusters").
//
// eps is the neighborhood radius and minPoints the minimum
// neighborhood size (the point itself counts). The returned labels
// are cluster ids starting at 0, with -1 marking noise.
func DensityCluster(data [][]float64, eps float64, minPoints int) []int {
	n := len(data)
	labels := make([]int, n)
	visited := make([]bool, n)
	for i := 0; i < n; i++ {
		labels[i] = -1
	}

	clusterID := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := epsNeighbors(data, i, eps)
		if len(neighbors) < minPoints {
			continue // stays noise unless reached from a core point
		}

		labels[i] = clusterID

		seedSet := make([]int, len(neighbors))
		copy(seedSet, neighbors)

		for j := 0; j < len(seedSet); j++ {
			q := seedSet[j]

			if !visited[q] {
				visited[q] = true
				qNeighbors := epsNeighbors(data, q, eps)
				if len(qNeighbors) >= minPoints {
					seedSet = append(seedSet, qNeighbors...)
				}
			}

			if labels[q] == -1 {
				labels[q] = clusterID
			}
		}

		clusterID++
	}

	return labels
}

// epsNeighbors returns the indices of all points within eps of point
// i, including i itself.
func epsNeighbors(data [][]float64, i int, eps float64) []int {
	neighbors := make([]int, 0)
	for j := range data {
		if EuclideanDistance(data[i], data[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
