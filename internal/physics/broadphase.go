package physics

// Broadphase отбирает пары тел, потенциально находящихся в контакте.
// Проверка грубая: ограничивающие сферы или AABB, без учета формы.
type Broadphase interface {
	// CollisionPairs дописывает кандидатные пары в pairsA/pairsB и
	// возвращает обновленные срезы.
	CollisionPairs(world *World, pairsA, pairsB []*Body) ([]*Body, []*Body)

	// AABBQuery возвращает тела, чьи AABB пересекают заданный.
	AABBQuery(world *World, aabb AABB, result []*Body) []*Body
}

// needBroadphaseCollision решает, имеет ли пара тел шанс на контакт:
// фильтры групп/масок и исключение пар статика-статика и спящий-спящий.
func needBroadphaseCollision(bi, bj *Body) bool {
	if bi.CollisionFilterGroup&bj.CollisionFilterMask == 0 ||
		bj.CollisionFilterGroup&bi.CollisionFilterMask == 0 {
		return false
	}

	biImmovable := bi.Type == BodyStatic || bi.SleepState == StateSleeping
	bjImmovable := bj.Type == BodyStatic || bj.SleepState == StateSleeping
	return !(biImmovable && bjImmovable)
}

// boundingSphereCheck - проверка пересечения ограничивающих сфер.
func boundingSphereCheck(bi, bj *Body) bool {
	r := bi.BoundingRadius + bj.BoundingRadius
	return bj.Position.Sub(bi.Position).LenSqr() < r*r
}

// aabbCheck - проверка пересечения AABB тел (AABB обновляются лениво).
func aabbCheck(bi, bj *Body) bool {
	if bi.AABBNeedsUpdate {
		bi.UpdateAABB()
	}
	if bj.AABBNeedsUpdate {
		bj.UpdateAABB()
	}
	return bi.AABB.Overlaps(bj.AABB)
}

// NaiveBroadphase перебирает все пары тел. Квадратичная, но без
// состояния и предсказуемая; для небольших миров этого достаточно.
type NaiveBroadphase struct {
	// UseBoundingBoxes переключает грубую проверку со сфер на AABB.
	UseBoundingBoxes bool
}

func NewNaiveBroadphase() *NaiveBroadphase {
	return &NaiveBroadphase{}
}

func (b *NaiveBroadphase) CollisionPairs(world *World, pairsA, pairsB []*Body) ([]*Body, []*Body) {
	bodies := world.Bodies
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			bi, bj := bodies[i], bodies[j]
			if !needBroadphaseCollision(bi, bj) {
				continue
			}
			var hit bool
			if b.UseBoundingBoxes {
				hit = aabbCheck(bi, bj)
			} else {
				hit = boundingSphereCheck(bi, bj)
			}
			if hit {
				pairsA = append(pairsA, bi)
				pairsB = append(pairsB, bj)
			}
		}
	}
	return pairsA, pairsB
}

func (b *NaiveBroadphase) AABBQuery(world *World, aabb AABB, result []*Body) []*Body {
	for _, body := range world.Bodies {
		if body.AABBNeedsUpdate {
			body.UpdateAABB()
		}
		if body.AABB.Overlaps(aabb) {
			result = append(result, body)
		}
	}
	return result
}
