package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/store/internal/domain"
	"github.com/vladislavdragonenkov/store/internal/pagination"
)

type invoiceRepository struct {
	q querier
}

func (r *invoiceRepository) GetByID(ctx context.Context, id int64) (domain.Invoice, error) {
	return r.getByID(ctx, id, 0)
}

func (r *invoiceRepository) GetByIDForUser(ctx context.Context, id, userID int64) (domain.Invoice, error) {
	return r.getByID(ctx, id, userID)
}

func (r *invoiceRepository) GetPaged(ctx context.Context, filter domain.InvoiceFilter) (pagination.Page[domain.Invoice], error) {
	return r.getPaged(ctx, filter, 0)
}

func (r *invoiceRepository) GetPagedForUser(ctx context.Context, userID int64, filter domain.InvoiceFilter) (pagination.Page[domain.Invoice], error) {
	return r.getPaged(ctx, filter, userID)
}

func (r *invoiceRepository) Add(ctx context.Context, invoice *domain.Invoice) error {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.q.QueryRowContext(queryCtx, `
		INSERT INTO invoices (user_id, total_amount, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, invoice.UserID, invoice.TotalAmount, invoice.CreatedAt).Scan(&invoice.ID)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	for i := range invoice.Details {
		d := &invoice.Details[i]
		d.InvoiceID = invoice.ID
		err := r.q.QueryRowContext(queryCtx, `
			INSERT INTO invoice_details
				(invoice_id, product_id, product_name, product_description, unit_price, quantity, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, d.InvoiceID, d.ProductID, d.ProductName, d.ProductDescription, d.UnitPrice, d.Quantity, d.LineTotal).Scan(&d.ID)
		if err != nil {
			return fmt.Errorf("insert invoice detail for invoice %d: %w", invoice.ID, err)
		}
	}
	return nil
}

// getByID с scopeUserID=0 возвращает счёт без проверки владельца.
func (r *invoiceRepository) getByID(ctx context.Context, id, scopeUserID int64) (domain.Invoice, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `SELECT id, user_id, total_amount, created_at FROM invoices WHERE id = $1`
	args := []any{id}
	if scopeUserID > 0 {
		query += ` AND user_id = $2`
		args = append(args, scopeUserID)
	}

	var inv domain.Invoice
	err := r.q.QueryRowContext(queryCtx, query, args...).
		Scan(&inv.ID, &inv.UserID, &inv.TotalAmount, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invoice{}, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("query invoice %d: %w", id, err)
	}

	invoices := []domain.Invoice{inv}
	if err := r.loadDetails(queryCtx, invoices); err != nil {
		return domain.Invoice{}, err
	}
	return invoices[0], nil
}

func (r *invoiceRepository) getPaged(ctx context.Context, filter domain.InvoiceFilter, scopeUserID int64) (pagination.Page[domain.Invoice], error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where := []string{"TRUE"}
	args := []any{}

	if scopeUserID > 0 {
		args = append(args, scopeUserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, filter.From.UTC())
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	condition := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRowContext(queryCtx,
		"SELECT COUNT(*) FROM invoices WHERE "+condition, args...,
	).Scan(&total); err != nil {
		return pagination.Page[domain.Invoice]{}, fmt.Errorf("count invoices: %w", err)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`
		SELECT id, user_id, total_amount, created_at
		FROM invoices
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, condition, orderClause(filter.NormalizedOrder()), len(args)+1, len(args)+2)
	args = append(args, size, (page-1)*size)

	rows, err := r.q.QueryContext(queryCtx, query, args...)
	if err != nil {
		return pagination.Page[domain.Invoice]{}, fmt.Errorf("query invoices page: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.TotalAmount, &inv.CreatedAt); err != nil {
			return pagination.Page[domain.Invoice]{}, fmt.Errorf("scan invoice row: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[domain.Invoice]{}, fmt.Errorf("iterate invoice rows: %w", err)
	}

	if err := r.loadDetails(queryCtx, invoices); err != nil {
		return pagination.Page[domain.Invoice]{}, err
	}

	return pagination.New(invoices, total, page, size), nil
}

// orderClause сопоставляет нормализованный код сортировки с ORDER BY.
// Идентификатор дорешивает ничьи, чтобы порядок был детерминированным.
func orderClause(order string) string {
	switch order {
	case domain.InvoiceOrderDateAsc:
		return "created_at ASC, id ASC"
	case domain.InvoiceOrderAmountDesc:
		return "total_amount DESC, id DESC"
	case domain.InvoiceOrderAmountAsc:
		return "total_amount ASC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

// loadDetails догружает позиции одним запросом для всей страницы счетов.
func (r *invoiceRepository) loadDetails(ctx context.Context, invoices []domain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(invoices))
	index := make(map[int64]*domain.Invoice, len(invoices))
	for i := range invoices {
		ids = append(ids, invoices[i].ID)
		index[invoices[i].ID] = &invoices[i]
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, invoice_id, product_id, product_name, product_description,
		       unit_price, quantity, line_total
		FROM invoice_details
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, id
	`, ids)
	if err != nil {
		return fmt.Errorf("query invoice details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.InvoiceDetail
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.ProductID, &d.ProductName,
			&d.ProductDescription, &d.UnitPrice, &d.Quantity, &d.LineTotal); err != nil {
			return fmt.Errorf("scan invoice detail row: %w", err)
		}
		if inv, ok := index[d.InvoiceID]; ok {
			inv.Details = append(inv.Details, d)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate invoice detail rows: %w", err)
	}
	return nil
}

var _ domain.InvoiceRepository = (*invoiceRepository)(nil)
