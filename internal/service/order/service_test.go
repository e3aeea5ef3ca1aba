package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/store/internal/domain"
	"github.com/vladislavdragonenkov/store/internal/service/userdir"
	"github.com/vladislavdragonenkov/store/internal/storage/memory"
)

func newOrderServiceForTest(t *testing.T) (Service, *memory.Store, *userdir.MockDirectory) {
	t.Helper()
	store := memory.NewStore()
	users := userdir.NewMockDirectory(
		domain.User{ID: 1, Email: "alice@example.com", FullName: "Alice Johnson"},
		domain.User{ID: 2, Email: "bob@example.com", FullName: "Bob Smith"},
		domain.User{ID: 3, Email: "carol@example.com", FullName: "Carol Davis", Locked: true},
	)
	return NewServiceWithoutMetrics(store, users, nil), store, users
}

func addProduct(t *testing.T, store *memory.Store, price string, stock int, translations ...domain.Translation) int64 {
	t.Helper()

	ctx := context.Background()
	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	product := domain.Product{
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Translations:  translations,
	}
	require.NoError(t, uow.Products().Add(ctx, &product))
	require.NoError(t, uow.Complete(ctx))
	return product.ID
}

func stockOf(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()
	product, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return product.StockQuantity
}

func TestCreateInvoice_SnapshotsResolvedTranslation(t *testing.T) {
	svc, store, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	penID := addProduct(t, store, "10.00", 5,
		domain.Translation{Language: "en", Name: "Pen", Description: "Blue pen"},
		domain.Translation{Language: "fr", Name: "Stylo", Description: "Stylo bleu"},
	)

	view, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID:   1,
		Language: "FR",
		Items:    []InvoiceItemInput{{ProductID: penID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.NotZero(t, view.ID)
	require.Len(t, view.Lines, 1)
	require.Equal(t, "Stylo", view.Lines[0].Name)
	require.Equal(t, "Stylo bleu", view.Lines[0].Description)
	require.True(t, view.Lines[0].LineTotal.Equal(decimal.RequireFromString("30.00")))
	require.True(t, view.TotalAmount.Equal(decimal.RequireFromString("30.00")))
	require.Equal(t, 2, stockOf(t, store, penID))
}

func TestCreateInvoice_SequentialConsumesStock(t *testing.T) {
	svc, store, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	id := addProduct(t, store, "5.00", 10, domain.Translation{Language: "en", Name: "Marker"})

	for _, qty := range []int{4, 4} {
		_, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
			UserID: 1,
			Items:  []InvoiceItemInput{{ProductID: id, Quantity: qty}},
		})
		require.NoError(t, err)
	}
	require.Equal(t, 2, stockOf(t, store, id))

	_, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID: 1,
		Items:  []InvoiceItemInput{{ProductID: id, Quantity: 3}},
	})
	require.Error(t, err)

	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, []string{
		fmt.Sprintf("Not enough stock for product %d. Available: 2, requested: 3.", id),
	}, verr.Messages)
	require.Equal(t, 2, stockOf(t, store, id))
}

func TestCreateInvoice_AggregatesLineErrorsAndCommitsNothing(t *testing.T) {
	svc, store, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	goodID := addProduct(t, store, "10.00", 5, domain.Translation{Language: "en", Name: "Pen"})
	lowID := addProduct(t, store, "2.00", 1, domain.Translation{Language: "en", Name: "Clip"})

	_, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID: 1,
		Items: []InvoiceItemInput{
			{ProductID: goodID, Quantity: 2},
			{ProductID: 999, Quantity: 1},
			{ProductID: lowID, Quantity: 0},
			{ProductID: lowID, Quantity: 5},
		},
	})
	require.Error(t, err)

	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, []string{
		"Product with id 999 was not found.",
		fmt.Sprintf("Quantity for product %d must be at least 1.", lowID),
		fmt.Sprintf("Not enough stock for product %d. Available: 1, requested: 5.", lowID),
	}, verr.Messages)

	// Ни частичного счёта, ни частичного списания.
	require.Equal(t, 5, stockOf(t, store, goodID))
	require.Equal(t, 1, stockOf(t, store, lowID))

	page, err := svc.ListUserInvoices(ctx, 1, domain.InvoiceFilter{})
	require.NoError(t, err)
	require.Zero(t, page.TotalCount)
}

func TestCreateInvoice_DuplicateLinesShareStock(t *testing.T) {
	svc, store, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	id := addProduct(t, store, "1.00", 5, domain.Translation{Language: "en", Name: "Pin"})

	// Две строки одного товара валидируются против накопленного списания:
	// 3 + 3 > 5, вторая строка должна увидеть остаток 2.
	_, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID: 1,
		Items: []InvoiceItemInput{
			{ProductID: id, Quantity: 3},
			{ProductID: id, Quantity: 3},
		},
	})
	require.Error(t, err)

	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, []string{
		fmt.Sprintf("Not enough stock for product %d. Available: 2, requested: 3.", id),
	}, verr.Messages)
	require.Equal(t, 5, stockOf(t, store, id))
}

func TestCreateInvoice_FallbackNameWithoutTranslations(t *testing.T) {
	svc, store, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	id := addProduct(t, store, "4.00", 2)

	view, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID: 1,
		Items:  []InvoiceItemInput{{ProductID: id, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("Product #%d", id), view.Lines[0].Name)
	require.Empty(t, view.Lines[0].Description)
}

func TestCreateInvoice_EmptyItems(t *testing.T) {
	svc, _, _ := newOrderServiceForTest(t)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{UserID: 1})
	require.Error(t, err)

	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, []string{"At least one item is required."}, verr.Messages)
}

func TestCreateInvoice_UserChecks(t *testing.T) {
	svc, store, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	id := addProduct(t, store, "1.00", 1, domain.Translation{Language: "en", Name: "Pin"})
	items := []InvoiceItemInput{{ProductID: id, Quantity: 1}}

	_, err := svc.CreateInvoice(ctx, CreateInvoiceInput{UserID: 99, Items: items})
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	// Заблокированный пользователь не может оформлять заказы.
	_, err = svc.CreateInvoice(ctx, CreateInvoiceInput{UserID: 3, Items: items})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, []string{"User account is locked."}, verr.Messages)
	require.Equal(t, 1, stockOf(t, store, id))
}

func TestCreateInvoice_ConcurrentPlacementLoses(t *testing.T) {
	svc, store, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	id := addProduct(t, store, "1.00", 5, domain.Translation{Language: "en", Name: "Pin"})

	// Вторая граница стартует до фиксации первой: проверка остатка у обеих
	// проходит, но повторная сверка на commit отдаёт остаток только одной.
	first, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Products().DecrementStock(ctx, id, 4))

	_, err = svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID: 1,
		Items:  []InvoiceItemInput{{ProductID: id, Quantity: 4}},
	})
	require.NoError(t, err)

	err = first.Complete(ctx)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	require.Equal(t, 1, stockOf(t, store, id))
}

func TestCreateInvoice_EnqueuesOutboxEventOnCommit(t *testing.T) {
	svc, store, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	id := addProduct(t, store, "10.00", 5, domain.Translation{Language: "en", Name: "Pen"})

	view, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID: 1,
		Items:  []InvoiceItemInput{{ProductID: id, Quantity: 2}},
	})
	require.NoError(t, err)

	pending, err := store.Outbox().PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "invoice", pending[0].AggregateType)
	require.Equal(t, fmt.Sprintf("%d", view.ID), pending[0].AggregateID)
	require.Equal(t, "invoice.created", pending[0].EventType)
	require.Contains(t, string(pending[0].Payload), `"invoice_id":`)

	// Отклонённое оформление события не оставляет.
	_, err = svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID: 1,
		Items:  []InvoiceItemInput{{ProductID: id, Quantity: 100}},
	})
	require.Error(t, err)

	pending, err = store.Outbox().PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestInvoiceReads_ScopingAndAggregates(t *testing.T) {
	svc, store, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	penID := addProduct(t, store, "10.00", 20, domain.Translation{Language: "en", Name: "Pen"})
	clipID := addProduct(t, store, "2.00", 20, domain.Translation{Language: "en", Name: "Clip"})

	aliceView, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID: 1,
		Items: []InvoiceItemInput{
			{ProductID: penID, Quantity: 2},
			{ProductID: clipID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	_, err = svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID: 2,
		Items:  []InvoiceItemInput{{ProductID: penID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Чужой счёт для пользователя выглядит отсутствующим.
	_, err = svc.GetUserInvoice(ctx, 2, aliceView.ID)
	require.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	mine, err := svc.GetUserInvoice(ctx, 1, aliceView.ID)
	require.NoError(t, err)
	require.Len(t, mine.Lines, 2)

	page, err := svc.ListUserInvoices(ctx, 1, domain.InvoiceFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	require.Equal(t, 2, page.Items[0].TotalProducts)
	require.Equal(t, 5, page.Items[0].TotalQuantity)

	adminPage, err := svc.ListInvoices(ctx, domain.InvoiceFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, adminPage.TotalCount)

	byUser := map[int64]InvoiceAdminListItem{}
	for _, item := range adminPage.Items {
		byUser[item.UserID] = item
	}
	require.Equal(t, "alice@example.com", byUser[1].UserEmail)
	require.Equal(t, "Alice Johnson", byUser[1].UserFullName)
	require.Equal(t, "bob@example.com", byUser[2].UserEmail)
}

func TestListInvoices_UnknownOwnerLeavesDisplayFieldsEmpty(t *testing.T) {
	svc, store, users := newOrderServiceForTest(t)
	ctx := context.Background()

	id := addProduct(t, store, "3.00", 5, domain.Translation{Language: "en", Name: "Tape"})

	users.Put(domain.User{ID: 42, Email: "temp@example.com"})
	_, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		UserID: 42,
		Items:  []InvoiceItemInput{{ProductID: id, Quantity: 1}},
	})
	require.NoError(t, err)

	// Пользователь исчез из справочника после оформления.
	users.Put(domain.User{ID: 42})
	users.FindErr = nil

	fresh := NewServiceWithoutMetrics(store, userdir.NewMockDirectory(), nil)
	page, err := fresh.ListInvoices(ctx, domain.InvoiceFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	require.Empty(t, page.Items[0].UserEmail)
	require.Empty(t, page.Items[0].UserFullName)
}
