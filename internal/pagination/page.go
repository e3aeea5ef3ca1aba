package pagination

// Page — ограниченный срез отфильтрованной, упорядоченной выборки
// вместе с метаданными о количестве страниц.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	PageSize    int
	TotalCount  int
	TotalPages  int
}

// New собирает страницу из уже нарезанных элементов и общего количества.
// Номер страницы и её размер примитив не нормализует — это обязанность вызывающего.
func New[T any](items []T, totalCount, currentPage, pageSize int) Page[T] {
	return Page[T]{
		Items:       items,
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages(totalCount, pageSize),
	}
}

// Paginate нарезает страницу из полного упорядоченного среза.
// Страница за пределами выборки даёт пустые Items с корректными итогами.
func Paginate[T any](source []T, currentPage, pageSize int) Page[T] {
	total := len(source)

	start := (currentPage - 1) * pageSize
	if start < 0 || start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]T, end-start)
	copy(items, source[start:end])

	return New(items, total, currentPage, pageSize)
}

// Map переводит страницу из одного типа элементов в другой, сохраняя метаданные.
func Map[T, U any](page Page[T], transform func(T) U) Page[U] {
	items := make([]U, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, transform(item))
	}
	return Page[U]{
		Items:       items,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
	}
}

func totalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
