package postgres

// SetCoordinatesPageSize меняет размер страницы выборки мечт для карты и
// возвращает функцию восстановления
func SetCoordinatesPageSize(n int) func() {
	prev := coordinatesPageSize
	coordinatesPageSize = n
	return func() { coordinatesPageSize = prev }
}
