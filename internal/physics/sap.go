package physics

// SAPBroadphase - sweep-and-prune по одной оси. Тела держатся в списке,
// отсортированном по нижней границе AABB вдоль выбранной оси; сортировка
// вставками почти бесплатна, пока тела двигаются мало между шагами.
type SAPBroadphase struct {
	axisList []*Body

	// AxisIndex - ось сортировки: 0 (X), 1 (Y) или 2 (Z).
	AxisIndex int

	lastRevision int
}

func NewSAPBroadphase() *SAPBroadphase {
	return &SAPBroadphase{AxisIndex: 0, lastRevision: -1}
}

func (s *SAPBroadphase) syncList(world *World) {
	if s.lastRevision == world.bodiesRevision {
		return
	}
	s.axisList = s.axisList[:0]
	s.axisList = append(s.axisList, world.Bodies...)
	s.lastRevision = world.bodiesRevision
}

func (s *SAPBroadphase) sortList() {
	axis := s.AxisIndex
	list := s.axisList
	for i := 1; i < len(list); i++ {
		b := list[i]
		if b.AABBNeedsUpdate {
			b.UpdateAABB()
		}
		j := i - 1
		for j >= 0 && list[j].AABB.Lower[axis] > b.AABB.Lower[axis] {
			list[j+1] = list[j]
			j--
		}
		list[j+1] = b
	}
}

func (s *SAPBroadphase) CollisionPairs(world *World, pairsA, pairsB []*Body) ([]*Body, []*Body) {
	s.syncList(world)

	for _, b := range s.axisList {
		if b.AABBNeedsUpdate {
			b.UpdateAABB()
		}
	}
	s.sortList()

	axis := s.AxisIndex
	for i := 0; i < len(s.axisList); i++ {
		bi := s.axisList[i]
		for j := i + 1; j < len(s.axisList); j++ {
			bj := s.axisList[j]
			if bj.AABB.Lower[axis] > bi.AABB.Upper[axis] {
				break
			}
			if !needBroadphaseCollision(bi, bj) {
				continue
			}
			if bi.AABB.Overlaps(bj.AABB) {
				pairsA = append(pairsA, bi)
				pairsB = append(pairsB, bj)
			}
		}
	}
	return pairsA, pairsB
}

func (s *SAPBroadphase) AABBQuery(world *World, aabb AABB, result []*Body) []*Body {
	s.syncList(world)
	for _, b := range s.axisList {
		if b.AABBNeedsUpdate {
			b.UpdateAABB()
		}
		if b.AABB.Overlaps(aabb) {
			result = append(result, b)
		}
	}
	return result
}

// AutoDetectAxis выбирает ось с наибольшим разбросом центров тел.
func (s *SAPBroadphase) AutoDetectAxis(world *World) {
	s.syncList(world)

	var sum, sumSq Vec3
	n := float64(len(s.axisList))
	if n == 0 {
		return
	}
	for _, b := range s.axisList {
		c := b.Position
		sum = sum.Add(c)
		sumSq = sumSq.Add(vmul(c, c))
	}
	variance := sumSq.Mul(1 / n).Sub(vmul(sum.Mul(1/n), sum.Mul(1/n)))

	s.AxisIndex = 0
	if variance[1] > variance[s.AxisIndex] {
		s.AxisIndex = 1
	}
	if variance[2] > variance[s.AxisIndex] {
		s.AxisIndex = 2
	}
}
