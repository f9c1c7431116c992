package physics

// События мира передаются слушателям значениями, областью жизни
// которых является синхронный вызов обработчика. Указатели внутри
// события (тела, формы, уравнения) нельзя сохранять между шагами:
// уравнения возвращаются в пул сразу после рассылки.

// ContactEvent - пара тел начала или закончила соприкасаться.
type ContactEvent struct {
	BodyA *Body
	BodyB *Body
}

// ShapeContactEvent - пара конкретных форм начала или закончила
// соприкасаться.
type ShapeContactEvent struct {
	BodyA  *Body
	BodyB  *Body
	ShapeA Shape
	ShapeB Shape
}

// CollideEvent - событие контакта на теле: с кем столкнулись и
// первое контактное уравнение пары.
type CollideEvent struct {
	Body    *Body
	Contact *ContactEquation
}
