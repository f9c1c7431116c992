package physics

import "sort"

// CollisionMatrix хранит факт контакта пары тел на текущем шаге в
// треугольном массиве, индексируемом позициями тел в мире.
type CollisionMatrix struct {
	matrix []bool
}

func (m *CollisionMatrix) index(bi, bj *Body) int {
	i, j := bi.Index, bj.Index
	if j > i {
		i, j = j, i
	}
	return (i*(i+1))/2 + j
}

// Get сообщает, контактировала ли пара на этом шаге.
func (m *CollisionMatrix) Get(bi, bj *Body) bool {
	idx := m.index(bi, bj)
	if idx >= len(m.matrix) {
		return false
	}
	return m.matrix[idx]
}

// Set отмечает контакт пары.
func (m *CollisionMatrix) Set(bi, bj *Body, value bool) {
	idx := m.index(bi, bj)
	if idx >= len(m.matrix) {
		m.grow(idx + 1)
	}
	m.matrix[idx] = value
}

// Reset очищает матрицу под заданное число тел.
func (m *CollisionMatrix) Reset(numBodies int) {
	n := (numBodies * (numBodies + 1)) / 2
	if n > len(m.matrix) {
		m.grow(n)
	}
	for i := range m.matrix {
		m.matrix[i] = false
	}
}

func (m *CollisionMatrix) grow(n int) {
	grown := make([]bool, n)
	copy(grown, m.matrix)
	m.matrix = grown
}

// OverlapKeeper накапливает ключи перекрывающихся пар текущего шага и,
// сравнивая с предыдущим шагом, выдает новые и исчезнувшие пары. Ключи
// держатся отсортированными, diff - одним проходом слиянием.
type OverlapKeeper struct {
	current  []int
	previous []int
}

func overlapKey(i, j int) int {
	if j < i {
		i, j = j, i
	}
	return (i << 16) | j
}

// Set отмечает перекрытие пары (i, j) на текущем шаге.
func (k *OverlapKeeper) Set(i, j int) {
	key := overlapKey(i, j)
	idx := sort.SearchInts(k.current, key)
	if idx < len(k.current) && k.current[idx] == key {
		return
	}
	k.current = append(k.current, 0)
	copy(k.current[idx+1:], k.current[idx:])
	k.current[idx] = key
}

// Tick завершает шаг: текущий набор становится предыдущим.
func (k *OverlapKeeper) Tick() {
	k.current, k.previous = k.previous[:0], k.current
}

// GetDiff возвращает ключи, появившиеся и исчезнувшие по сравнению с
// предыдущим шагом.
func (k *OverlapKeeper) GetDiff() (additions, removals []int) {
	i, j := 0, 0
	for i < len(k.current) && j < len(k.previous) {
		switch {
		case k.current[i] == k.previous[j]:
			i++
			j++
		case k.current[i] < k.previous[j]:
			additions = append(additions, k.current[i])
			i++
		default:
			removals = append(removals, k.previous[j])
			j++
		}
	}
	additions = append(additions, k.current[i:]...)
	removals = append(removals, k.previous[j:]...)
	return additions, removals
}

// SplitKey раскладывает ключ пары обратно в индексы (i <= j).
func SplitKey(key int) (int, int) {
	return key >> 16, key & 0xFFFF
}
