package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/store/internal/domain"
)

// TranslationInput — перевод товара во входных данных.
// Код языка служит ключом: при обновлении входной набор сверяется
// с существующим по нормализованному коду, а не по идентификаторам строк.
type TranslationInput struct {
	Language    string
	Name        string
	Description string
}

// CreateProductInput — входные данные создания товара.
type CreateProductInput struct {
	Price         decimal.Decimal
	StockQuantity int
	Translations  []TranslationInput
}

// UpdateProductInput — входные данные обновления товара.
// Набор переводов описывает желаемое конечное состояние целиком.
type UpdateProductInput struct {
	ID            int64
	Price         decimal.Decimal
	StockQuantity int
	Translations  []TranslationInput
}

// ProductListItem — публичная строка каталога с разрешённым переводом.
type ProductListItem struct {
	ID            int64
	Name          string
	Description   string
	Price         decimal.Decimal
	IsInStock     bool
	StockQuantity int
}

// ProductPublicDetail — публичная карточка товара.
type ProductPublicDetail struct {
	ID            int64
	Name          string
	Description   string
	Price         decimal.Decimal
	IsInStock     bool
	StockQuantity int
}

// ProductAdminDetail — административное представление с полным набором переводов.
type ProductAdminDetail struct {
	ID            int64
	Price         decimal.Decimal
	StockQuantity int
	IsInStock     bool
	Translations  []domain.Translation
}

func toListItem(product domain.Product, language string) ProductListItem {
	resolved := domain.ResolveTranslation(product.Translations, language)
	item := ProductListItem{
		ID:            product.ID,
		Price:         product.Price,
		IsInStock:     product.IsInStock(),
		StockQuantity: product.StockQuantity,
	}
	if resolved != nil {
		item.Name = resolved.Name
		item.Description = resolved.Description
	}
	return item
}

func toPublicDetail(product domain.Product, language string) ProductPublicDetail {
	resolved := domain.ResolveTranslation(product.Translations, language)
	detail := ProductPublicDetail{
		ID:            product.ID,
		Price:         product.Price,
		IsInStock:     product.IsInStock(),
		StockQuantity: product.StockQuantity,
	}
	if resolved != nil {
		detail.Name = resolved.Name
		detail.Description = resolved.Description
	}
	return detail
}

func toAdminDetail(product domain.Product) ProductAdminDetail {
	return ProductAdminDetail{
		ID:            product.ID,
		Price:         product.Price,
		StockQuantity: product.StockQuantity,
		IsInStock:     product.IsInStock(),
		Translations:  product.Translations,
	}
}
