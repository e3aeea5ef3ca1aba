package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/store/internal/domain"
	"github.com/vladislavdragonenkov/store/internal/pagination"
)

// productRepository реализует каталожные операции поверх querier:
// одни и те же запросы работают через *sql.DB и внутри *sql.Tx.
type productRepository struct {
	q querier
}

func (r *productRepository) GetPaged(ctx context.Context, filter domain.ProductFilter) (pagination.Page[domain.Product], error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where := []string{"p.is_deleted = FALSE"}
	args := []any{}

	if filter.InStockOnly {
		where = append(where, "p.stock_quantity > 0")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM product_translations t
			WHERE t.product_id = p.id
			  AND (LOWER(t.name) LIKE $%d OR LOWER(t.description) LIKE $%d)
		)`, len(args), len(args)))
	}
	condition := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM products p WHERE " + condition
	if err := r.q.QueryRowContext(queryCtx, countQuery, args...).Scan(&total); err != nil {
		return pagination.Page[domain.Product]{}, fmt.Errorf("count products: %w", err)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	pageQuery := fmt.Sprintf(`
		SELECT p.id, p.price, p.stock_quantity, p.is_deleted
		FROM products p
		WHERE %s
		ORDER BY p.id DESC
		LIMIT $%d OFFSET $%d
	`, condition, len(args)+1, len(args)+2)
	args = append(args, size, (page-1)*size)

	rows, err := r.q.QueryContext(queryCtx, pageQuery, args...)
	if err != nil {
		return pagination.Page[domain.Product]{}, fmt.Errorf("query products page: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Price, &p.StockQuantity, &p.IsDeleted); err != nil {
			return pagination.Page[domain.Product]{}, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[domain.Product]{}, fmt.Errorf("iterate product rows: %w", err)
	}

	if err := r.loadTranslations(queryCtx, products); err != nil {
		return pagination.Page[domain.Product]{}, err
	}

	return pagination.New(products, total, page, size), nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var p domain.Product
	err := r.q.QueryRowContext(queryCtx, `
		SELECT id, price, stock_quantity, is_deleted
		FROM products
		WHERE id = $1 AND is_deleted = FALSE
	`, id).Scan(&p.ID, &p.Price, &p.StockQuantity, &p.IsDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("query product %d: %w", id, err)
	}

	products := []domain.Product{p}
	if err := r.loadTranslations(queryCtx, products); err != nil {
		return domain.Product{}, err
	}
	return products[0], nil
}

func (r *productRepository) Add(ctx context.Context, product *domain.Product) error {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.q.QueryRowContext(queryCtx, `
		INSERT INTO products (price, stock_quantity, is_deleted)
		VALUES ($1, $2, FALSE)
		RETURNING id
	`, product.Price, product.StockQuantity).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	for i := range product.Translations {
		t := &product.Translations[i]
		t.ProductID = product.ID
		if err := r.insertTranslation(queryCtx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.q.ExecContext(queryCtx, `
		UPDATE products
		SET price = $2, stock_quantity = $3, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`, product.ID, product.Price, product.StockQuantity)
	if err != nil {
		return fmt.Errorf("update product %d: %w", product.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product %d rows affected: %w", product.ID, err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	// Сверка набора переводов: существующие по ID обновляем на месте,
	// новые вставляем, отсутствующие в наборе удаляем.
	keep := make([]int64, 0, len(product.Translations))
	for i := range product.Translations {
		t := &product.Translations[i]
		t.ProductID = product.ID
		if t.ID == 0 {
			if err := r.insertTranslation(queryCtx, t); err != nil {
				return err
			}
		} else {
			res, err := r.q.ExecContext(queryCtx, `
				UPDATE product_translations
				SET language = $3, name = $4, description = $5
				WHERE id = $1 AND product_id = $2
			`, t.ID, t.ProductID, t.Language, t.Name, t.Description)
			if err != nil {
				if isUniqueViolation(err) {
					return domain.ErrDuplicateLanguage
				}
				return fmt.Errorf("update translation %d: %w", t.ID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("update translation %d rows affected: %w", t.ID, err)
			}
			if affected == 0 {
				return fmt.Errorf("translation %d does not belong to product %d", t.ID, product.ID)
			}
		}
		keep = append(keep, t.ID)
	}

	if _, err := r.q.ExecContext(queryCtx, `
		DELETE FROM product_translations
		WHERE product_id = $1 AND NOT (id = ANY($2))
	`, product.ID, keep); err != nil {
		return fmt.Errorf("prune translations of product %d: %w", product.ID, err)
	}
	return nil
}

func (r *productRepository) SoftDelete(ctx context.Context, id int64) error {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.q.ExecContext(queryCtx, `
		UPDATE products
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete product %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete product %d rows affected: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Условное списание: строка меняется только при достаточном остатке,
	// поэтому самая поздняя из гоняющихся транзакций получит 0 affected rows.
	res, err := r.q.ExecContext(queryCtx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE AND stock_quantity >= $2
	`, id, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock of product %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock of product %d rows affected: %w", id, err)
	}
	if affected == 0 {
		var exists bool
		checkErr := r.q.QueryRowContext(queryCtx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND is_deleted = FALSE)`, id,
		).Scan(&exists)
		if checkErr != nil {
			return fmt.Errorf("check product %d existence: %w", id, checkErr)
		}
		if !exists {
			return domain.ErrProductNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *productRepository) insertTranslation(ctx context.Context, t *domain.Translation) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO product_translations (product_id, language, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, t.ProductID, t.Language, t.Name, t.Description).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateLanguage
		}
		return fmt.Errorf("insert translation for product %d: %w", t.ProductID, err)
	}
	return nil
}

// loadTranslations догружает переводы одним запросом для всей страницы.
func (r *productRepository) loadTranslations(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(products))
	index := make(map[int64]*domain.Product, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
		index[products[i].ID] = &products[i]
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, product_id, language, name, description
		FROM product_translations
		WHERE product_id = ANY($1)
		ORDER BY product_id, id
	`, ids)
	if err != nil {
		return fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Translation
		if err := rows.Scan(&t.ID, &t.ProductID, &t.Language, &t.Name, &t.Description); err != nil {
			return fmt.Errorf("scan translation row: %w", err)
		}
		if p, ok := index[t.ProductID]; ok {
			p.Translations = append(p.Translations, t)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate translation rows: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// normalizePage приводит номер и размер страницы к допустимым значениям.
func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	if size > 50 {
		size = 50
	}
	return page, size
}

var _ domain.ProductRepository = (*productRepository)(nil)
