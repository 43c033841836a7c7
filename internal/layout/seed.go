package layout

import "sort"

// seedPositions places bodies with the most springs first. Each body starts
// at the mean of its already placed neighbours (either link direction), or
// the origin, plus a random offset of up to half a spring length per axis.
func (l *ForceLayout) seedPositions() {
	n := len(l.bodies)
	neighbors := make([][]int, n)
	for i := range l.bodies {
		for _, j := range l.bodies[i].Springs {
			if i == j {
				continue
			}
			neighbors[i] = append(neighbors[i], j)
			neighbors[j] = append(neighbors[j], i)
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(l.bodies[order[a]].Springs) > len(l.bodies[order[b]].Springs)
	})

	placed := make([]bool, n)
	spread := l.settings.SpringLength
	for _, i := range order {
		b := &l.bodies[i]
		b.Pos.Reset()

		count := 0
		for _, j := range neighbors[i] {
			if placed[j] {
				b.Pos.Add(l.bodies[j].Pos)
				count++
			}
		}
		if count > 0 {
			b.Pos.Scale(1 / float64(count))
		}

		for k := range b.Pos {
			b.Pos[k] += spread * (l.random.NextDouble() - 0.5)
		}
		placed[i] = true
	}
}
