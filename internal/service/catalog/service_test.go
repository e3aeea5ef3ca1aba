package catalog

import (
	"context"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/store/internal/domain"
	"github.com/vladislavdragonenkov/store/internal/storage/memory"
)

func newCatalogForTest(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewServiceWithoutMetrics(store, nil), store
}

func price(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(value)
}

func TestCreate_AssignsIDsAndNormalizesLanguages(t *testing.T) {
	svc, _ := newCatalogForTest(t)
	ctx := context.Background()

	detail, err := svc.Create(ctx, CreateProductInput{
		Price:         price(t, "19.99"),
		StockQuantity: 5,
		Translations: []TranslationInput{
			{Language: " EN ", Name: "  Pen ", Description: "Blue pen"},
			{Language: "fr", Name: "Stylo"},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, detail.ID)
	require.Len(t, detail.Translations, 2)
	require.Equal(t, "en", detail.Translations[0].Language)
	require.Equal(t, "Pen", detail.Translations[0].Name)
	require.True(t, detail.IsInStock)
	for _, tr := range detail.Translations {
		require.NotZero(t, tr.ID)
	}
}

func TestCreate_AggregatesValidationMessages(t *testing.T) {
	svc, _ := newCatalogForTest(t)

	_, err := svc.Create(context.Background(), CreateProductInput{
		Price:         price(t, "0.00"),
		StockQuantity: -1,
	})
	require.Error(t, err)

	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, []string{
		"Price must be at least 0.01.",
		"Stock quantity cannot be negative.",
		"At least one translation is required.",
	}, verr.Messages)
}

func TestCreate_RejectsDuplicateLanguages(t *testing.T) {
	svc, _ := newCatalogForTest(t)

	// Дубликат определяется после нормализации: "EN" и "en" конфликтуют.
	_, err := svc.Create(context.Background(), CreateProductInput{
		Price:         price(t, "5.00"),
		StockQuantity: 1,
		Translations: []TranslationInput{
			{Language: "EN", Name: "Pen"},
			{Language: "en", Name: "Pen again"},
		},
	})
	require.Error(t, err)

	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Contains(t, verr.Messages, "Duplicate language codes are not allowed in translations.")
}

func TestUpdate_ReconcilesTranslationSet(t *testing.T) {
	svc, _ := newCatalogForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Price:         price(t, "10.00"),
		StockQuantity: 3,
		Translations: []TranslationInput{
			{Language: "en", Name: "Pen"},
			{Language: "fr", Name: "Stylo"},
			{Language: "de", Name: "Stift"},
		},
	})
	require.NoError(t, err)

	byLanguage := map[string]domain.Translation{}
	for _, tr := range created.Translations {
		byLanguage[tr.Language] = tr
	}

	// Целевой набор {en, fr} задаётся только кодами языков:
	// en и fr сохраняют идентичность строк, de удаляется.
	updated, err := svc.Update(ctx, UpdateProductInput{
		ID:            created.ID,
		Price:         price(t, "12.00"),
		StockQuantity: 4,
		Translations: []TranslationInput{
			{Language: "en", Name: "Ballpoint pen"},
			{Language: "fr", Name: "Stylo"},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Translations, 2)

	for _, tr := range updated.Translations {
		switch tr.Language {
		case "en":
			require.Equal(t, byLanguage["en"].ID, tr.ID)
			require.Equal(t, "Ballpoint pen", tr.Name)
		case "fr":
			require.Equal(t, byLanguage["fr"].ID, tr.ID)
		default:
			t.Fatalf("unexpected language %q after reconcile", tr.Language)
		}
	}

	reloaded, err := svc.GetAdminByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Translations, 2)
	require.Equal(t, 4, reloaded.StockQuantity)
}

func TestUpdate_UnchangedLanguageKeepsRowID(t *testing.T) {
	svc, _ := newCatalogForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Price:         price(t, "10.00"),
		StockQuantity: 3,
		Translations: []TranslationInput{
			{Language: "en", Name: "Pen"},
			{Language: "fr", Name: "Stylo"},
			{Language: "de", Name: "Stift"},
		},
	})
	require.NoError(t, err)

	originalIDs := map[string]int64{}
	for _, tr := range created.Translations {
		require.NotZero(t, tr.ID)
		originalIDs[tr.Language] = tr.ID
	}

	// Перевод передан без изменений (и с кодом в другом регистре) —
	// строка обязана сохранить свой идентификатор, а новый язык
	// получает свежий.
	updated, err := svc.Update(ctx, UpdateProductInput{
		ID:            created.ID,
		Price:         price(t, "10.00"),
		StockQuantity: 3,
		Translations: []TranslationInput{
			{Language: "EN", Name: "Pen"},
			{Language: "fr", Name: "Stylo"},
			{Language: "es", Name: "Boligrafo"},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Translations, 3)

	for _, tr := range updated.Translations {
		switch tr.Language {
		case "en":
			require.Equal(t, originalIDs["en"], tr.ID)
		case "fr":
			require.Equal(t, originalIDs["fr"], tr.ID)
		case "es":
			require.NotZero(t, tr.ID)
			require.NotContains(t, []int64{originalIDs["en"], originalIDs["fr"], originalIDs["de"]}, tr.ID)
		default:
			t.Fatalf("unexpected language %q after reconcile", tr.Language)
		}
	}
}

func TestUpdate_UnknownProduct(t *testing.T) {
	svc, _ := newCatalogForTest(t)

	_, err := svc.Update(context.Background(), UpdateProductInput{
		ID:            42,
		Price:         price(t, "1.00"),
		StockQuantity: 1,
		Translations:  []TranslationInput{{Language: "en", Name: "Ghost"}},
	})
	require.Error(t, err)

	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, []string{"Product not found."}, verr.Messages)
}

func TestRemove_HidesProductFromReads(t *testing.T) {
	svc, _ := newCatalogForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Price:         price(t, "10.00"),
		StockQuantity: 3,
		Translations:  []TranslationInput{{Language: "en", Name: "Pen"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, created.ID))

	_, err = svc.GetPublicByID(ctx, created.ID, "en")
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	// Повторное удаление — уже NotFound.
	err = svc.Remove(ctx, created.ID)
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, []string{"Product not found."}, verr.Messages)
}

func TestListPublic_ResolvesLanguageWithFallback(t *testing.T) {
	svc, _ := newCatalogForTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductInput{
		Price:         price(t, "10.00"),
		StockQuantity: 3,
		Translations: []TranslationInput{
			{Language: "en", Name: "Pen", Description: "Blue pen"},
			{Language: "fr", Name: "Stylo", Description: "Stylo bleu"},
		},
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateProductInput{
		Price:         price(t, "3.00"),
		StockQuantity: 1,
		Translations:  []TranslationInput{{Language: "en", Name: "Eraser"}},
	})
	require.NoError(t, err)

	page, err := svc.ListPublic(ctx, "FR", domain.ProductFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalCount)

	// Новые товары первыми; у Eraser нет fr-перевода, берётся en.
	require.Equal(t, "Eraser", page.Items[0].Name)
	require.Equal(t, "Stylo", page.Items[1].Name)

	// Публичная строка несёт и флаг наличия, и остаток.
	require.True(t, page.Items[0].IsInStock)
	require.Equal(t, 1, page.Items[0].StockQuantity)
	require.Equal(t, 3, page.Items[1].StockQuantity)
}

func TestListPublic_ClampsPageParams(t *testing.T) {
	svc, _ := newCatalogForTest(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateProductInput{
			Price:         price(t, "1.00"),
			StockQuantity: 1,
			Translations:  []TranslationInput{{Language: "en", Name: "Item"}},
		})
		require.NoError(t, err)
	}

	page, err := svc.ListPublic(ctx, "en", domain.ProductFilter{Page: 0, PageSize: 0})
	require.NoError(t, err)
	require.Equal(t, 1, page.CurrentPage)
	require.Equal(t, 10, page.PageSize)

	page, err = svc.ListPublic(ctx, "en", domain.ProductFilter{Page: 1, PageSize: 500})
	require.NoError(t, err)
	require.Equal(t, 50, page.PageSize)
}

func TestGetPublicByID_ResolvesRequestedLanguage(t *testing.T) {
	svc, _ := newCatalogForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Price:         price(t, "10.00"),
		StockQuantity: 0,
		Translations: []TranslationInput{
			{Language: "en", Name: "Pen"},
			{Language: "fr", Name: "Stylo"},
		},
	})
	require.NoError(t, err)

	detail, err := svc.GetPublicByID(ctx, created.ID, "fr")
	require.NoError(t, err)
	require.Equal(t, "Stylo", detail.Name)
	require.False(t, detail.IsInStock)
	require.Equal(t, 0, detail.StockQuantity)

	// Неизвестный язык откатывается на en.
	detail, err = svc.GetPublicByID(ctx, created.ID, "es")
	require.NoError(t, err)
	require.Equal(t, "Pen", detail.Name)
}

func TestCatalogMutations_EnqueueOutboxEvents(t *testing.T) {
	svc, store := newCatalogForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Price:         price(t, "5.00"),
		StockQuantity: 2,
		Translations:  []TranslationInput{{Language: "en", Name: "Pen"}},
	})
	require.NoError(t, err)

	pending, err := store.Outbox().PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "product", pending[0].AggregateType)
	require.Equal(t, strconv.FormatInt(created.ID, 10), pending[0].AggregateID)
	require.Equal(t, "product.created", pending[0].EventType)
	require.Contains(t, string(pending[0].Payload), `"product_id":`)

	_, err = svc.Update(ctx, UpdateProductInput{
		ID:            created.ID,
		Price:         price(t, "6.00"),
		StockQuantity: 2,
		Translations:  []TranslationInput{{Language: "en", Name: "Pen"}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, created.ID))

	pending, err = store.Outbox().PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	var types []string
	for _, msg := range pending {
		types = append(types, msg.EventType)
	}
	require.ElementsMatch(t, []string{"product.created", "product.updated", "product.removed"}, types)

	// Отклонённая мутация события не оставляет.
	_, err = svc.Create(ctx, CreateProductInput{
		Price:        price(t, "5.00"),
		Translations: nil,
	})
	require.Error(t, err)

	pending, err = store.Outbox().PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
}
