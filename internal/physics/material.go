package physics

// Material - именованная метка поверхности с параметрами по умолчанию.
// Конкретные коэффициенты пары поверхностей задает ContactMaterial.
type Material struct {
	Name        string
	ID          int
	Friction    float64 // < 0 означает "не задано": берется из ContactMaterial
	Restitution float64 // < 0 означает "не задано"
}

var materialIDCounter int

// NewMaterial создает материал с незаданными коэффициентами.
func NewMaterial(name string) *Material {
	materialIDCounter++
	return &Material{
		Name:        name,
		ID:          materialIDCounter,
		Friction:    -1,
		Restitution: -1,
	}
}

// ContactMaterial описывает поведение пары материалов при контакте.
type ContactMaterial struct {
	ID int

	// Материалы пары. Порядок не важен: поиск симметричен.
	Materials [2]*Material

	Friction    float64
	Restitution float64

	// Spook-параметры контактных и фрикционных уравнений.
	ContactEquationStiffness   float64
	ContactEquationRelaxation  float64
	FrictionEquationStiffness  float64
	FrictionEquationRelaxation float64
}

var contactMaterialIDCounter int

// NewContactMaterial создает контактный материал для пары m1, m2
// со значениями по умолчанию.
func NewContactMaterial(m1, m2 *Material) *ContactMaterial {
	contactMaterialIDCounter++
	return &ContactMaterial{
		ID:                         contactMaterialIDCounter,
		Materials:                  [2]*Material{m1, m2},
		Friction:                   0.3,
		Restitution:                0.3,
		ContactEquationStiffness:   1e7,
		ContactEquationRelaxation:  3,
		FrictionEquationStiffness:  1e7,
		FrictionEquationRelaxation: 3,
	}
}

// contactMaterialKey - симметричный ключ пары материалов.
type contactMaterialKey struct {
	lo, hi int
}

func makeContactMaterialKey(id1, id2 int) contactMaterialKey {
	if id1 > id2 {
		id1, id2 = id2, id1
	}
	return contactMaterialKey{lo: id1, hi: id2}
}
