package world

import (
	"math"
)

// Константы для террейна
const (
	// Размеры сетки террейна
	TerrainGridSize = 128

	// Шаг сетки в мировых единицах
	TerrainElementSize = 3.0

	// Диапазон высот
	TerrainMinHeight = -50.0
	TerrainMaxHeight = 50.0
)

// perlinNoise2D - утилита для шума Перлина
func perlinNoise2D(x, y float64) float64 {
	// Простая хеш-функция для псевдо-шума
	h := x*12.9898 + y*78.233
	sinH := math.Sin(h)
	return math.Abs(sinH*43758.5453) - math.Floor(math.Abs(sinH*43758.5453))
}

// lerpValue - плавная интерполяция между a и b
func lerpValue(a, b, t float64) float64 {
	return a + t*(b-a)
}

// smoothstepValue - функция интерполяции для сглаживания
func smoothstepValue(t float64) float64 {
	return t * t * (3.0 - 2.0*t)
}

// getSmoothNoise - функция для получения сглаженного случайного шума
func getSmoothNoise(x, y float64) float64 {
	// Получаем целые координаты
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	x1 := x0 + 1.0
	y1 := y0 + 1.0

	// Интерполяционные коэффициенты
	sx := smoothstepValue(x - x0)
	sy := smoothstepValue(y - y0)

	// Интерполяция между 4 углами
	n00 := perlinNoise2D(x0, y0)
	n10 := perlinNoise2D(x1, y0)
	n01 := perlinNoise2D(x0, y1)
	n11 := perlinNoise2D(x1, y1)

	// Билинейная интерполяция
	nx0 := lerpValue(n00, n10, sx)
	nx1 := lerpValue(n01, n11, sx)
	n := lerpValue(nx0, nx1, sy)

	return n
}

// GenerateTerrainData - Генерация сетки высот с шумом Перлина для гор.
// Результат - матрица [w][h], пригодная для карты высот движка.
func GenerateTerrainData(w, h int, minHeight, maxHeight float64) [][]float64 {
	data := make([][]float64, w)
	for i := range data {
		data[i] = make([]float64, h)
	}

	// Параметры шума
	scales := []float64{1.0, 0.5, 0.25, 0.125, 0.0625}         // Разные масштабы для фрактального шума
	amplitudes := []float64{0.5, 0.25, 0.125, 0.0625, 0.03125} // Амплитуды для каждого масштаба

	heightRange := maxHeight - minHeight

	centerX := float64(w) / 2.0
	centerZ := float64(h) / 2.0

	maxRadius := math.Min(centerX, centerZ) * 0.8 // Радиус основного ландшафта

	// Создаем несколько гор в фиксированных местах (для воспроизводимости)
	mountainPositions := []struct{ x, z float64 }{
		{0.2, 0.3}, {0.7, 0.8}, {0.4, 0.7}, {0.8, 0.2}, {0.1, 0.9},
	}

	mountains := make([]struct{ x, z, height, radius float64 }, len(mountainPositions))
	for i := range mountains {
		mountains[i].x = mountainPositions[i].x * float64(w)
		mountains[i].z = mountainPositions[i].z * float64(h)
		mountains[i].height = 0.5 + 0.5*math.Abs(perlinNoise2D(float64(i)*0.1, 0.5))  // Высота от 0.5 до 1.0
		mountains[i].radius = 5.0 + 15.0*math.Abs(perlinNoise2D(0.5, float64(i)*0.1)) // Радиус от 5 до 20
	}

	// Вычисляем высоту для каждой точки
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			// Нормализуем координаты в диапазоне [0..1]
			nx := float64(i) / float64(w-1)
			nz := float64(j) / float64(h-1)

			// Многослойный шум (октавы) для создания фрактального рельефа
			noiseValue := 0.0
			for layer := 0; layer < len(scales); layer++ {
				scale := scales[layer]
				amplitude := amplitudes[layer]
				noiseValue += getSmoothNoise(nx*scale*10.0, nz*scale*10.0) * amplitude
			}

			// Нормализуем в диапазон [0..1]
			noiseValue = (noiseValue + 0.5) * 0.5

			// Добавление гор
			elevation := noiseValue
			for _, mountain := range mountains {
				// Расстояние от точки до горы
				dx := float64(i) - mountain.x
				dz := float64(j) - mountain.z
				distance := math.Sqrt(dx*dx + dz*dz)

				if distance < mountain.radius {
					// Фактор затухания от центра горы (1 в центре, 0 на краю)
					falloff := 1.0 - distance/mountain.radius
					falloff = math.Pow(falloff, 2.0) // Квадратичное затухание для более крутых склонов

					elevation += mountain.height * falloff * 0.8
				}
			}

			// Создаем впадину по краям карты для естественного обрамления
			distanceFromCenter := math.Sqrt(math.Pow(float64(i)-centerX, 2) + math.Pow(float64(j)-centerZ, 2))
			if distanceFromCenter > maxRadius {
				edgeFactor := (distanceFromCenter - maxRadius) / (math.Max(centerX, centerZ) - maxRadius)
				edgeFactor = math.Min(1.0, edgeFactor)
				elevation -= edgeFactor * 0.5
			}

			// Масштабируем в нужный диапазон высот
			data[i][j] = elevation*heightRange + minHeight
		}
	}

	return data
}

// FlattenHeightData разворачивает сетку высот в плоский срез для
// передачи клиенту (порядок - построчно по Z).
func FlattenHeightData(grid [][]float64) []float64 {
	if len(grid) == 0 {
		return nil
	}
	w, h := len(grid), len(grid[0])
	flat := make([]float64, 0, w*h)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			flat = append(flat, grid[i][j])
		}
	}
	return flat
}
