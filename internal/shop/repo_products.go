package shop

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepo struct{ DB *pgxpool.Pool }

const productColumns = `p.id, p.name, p.description, p.price, p.category_id, c.name,
       COALESCE(p.image_path, ''), COALESCE(p.thumbnail_path, ''), p.created_at, p.updated_at`

const productFrom = ` FROM products p JOIN product_categories c ON c.id = p.category_id`

// Whitelisted ordering expressions; anything else falls back to name.
var productOrderings = map[string]string{
	"name":      "p.name ASC",
	"-name":     "p.name DESC",
	"category":  "c.name ASC",
	"-category": "c.name DESC",
	"price":     "p.price ASC",
	"-price":    "p.price DESC",
}

type ProductListParams struct {
	Search   string
	Ordering string
	Page     int
	PageSize int
}

func (p *ProductListParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (r *ProductRepo) List(ctx context.Context, params ProductListParams) ([]Product, error) {
	params.normalize()

	q := `SELECT ` + productColumns + productFrom
	args := []any{}
	if params.Search != "" {
		q += ` WHERE p.name ILIKE $1 OR c.name ILIKE $1 OR p.description ILIKE $1 OR p.price::text LIKE $1`
		args = append(args, "%"+params.Search+"%")
	}

	orderBy, ok := productOrderings[params.Ordering]
	if !ok {
		orderBy = productOrderings["name"]
	}
	q += ` ORDER BY ` + orderBy

	limitPos := len(args) + 1
	q += ` LIMIT $` + strconv.Itoa(limitPos) + ` OFFSET $` + strconv.Itoa(limitPos+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id=$1`, id)
	if err := scanProduct(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, NotFoundf("product %s", id)
		}
		return Product{}, err
	}
	return p, nil
}

// ProductsByIDs resolves ids to live records; missing ids are simply absent
// from the returned map.
func (r *ProductRepo) ProductsByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Product, len(ids))
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *ProductRepo) Create(ctx context.Context, p Product) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, description, price, category_id, image_path, thumbnail_path)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''))`,
		p.ID, p.Name, p.Description, p.Price, p.CategoryID, p.ImagePath, p.ThumbnailPath,
	)
	return err
}

func (r *ProductRepo) Update(ctx context.Context, p Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name=$2, description=$3, price=$4, category_id=$5,
		    image_path=NULLIF($6,''), thumbnail_path=NULLIF($7,''), updated_at=now()
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Price, p.CategoryID, p.ImagePath, p.ThumbnailPath,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFoundf("product %s", p.ID)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFoundf("product %s", id)
	}
	return nil
}

func (r *ProductRepo) CreateCategory(ctx context.Context, c ProductCategory) error {
	_, err := r.DB.Exec(ctx, `INSERT INTO product_categories(id, name) VALUES ($1, $2)`, c.ID, c.Name)
	return err
}

func (r *ProductRepo) ListCategories(ctx context.Context) ([]ProductCategory, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name FROM product_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductCategory
	for rows.Next() {
		var c ProductCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ProductRepo) CategoryExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM product_categories WHERE id=$1`, id).Scan(&n)
	return n > 0, err
}

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.CategoryName,
		&p.ImagePath, &p.ThumbnailPath, &p.CreatedAt, &p.UpdatedAt,
	)
}
