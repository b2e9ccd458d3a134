package httpx

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mlorenc/go-shop-api/internal/auth"
	"github.com/mlorenc/go-shop-api/internal/shop"
)

type CatalogStore interface {
	List(ctx context.Context, params shop.ProductListParams) ([]shop.Product, error)
	Get(ctx context.Context, id string) (shop.Product, error)
	Create(ctx context.Context, p shop.Product) error
	Update(ctx context.Context, p shop.Product) error
	Delete(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, c shop.ProductCategory) error
	ListCategories(ctx context.Context) ([]shop.ProductCategory, error)
	CategoryExists(ctx context.Context, id string) (bool, error)
}

type MediaSaver interface {
	Save(r io.Reader) (imagePath, thumbPath string, err error)
	Remove(paths ...string)
}

type ProductsHandler struct {
	Catalog CatalogStore
	Media   MediaSaver
	Tokens  *auth.TokenIssuer
	Log     zerolog.Logger
}

const maxUploadBytes = 32 << 20

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products/", h.list)
	r.Get("/product/{id}/", h.get)
	r.Get("/categories/", h.listCategories)

	r.Group(func(gr chi.Router) {
		gr.Use(auth.Authenticate(h.Tokens))
		gr.Use(auth.RequireRole(shop.RoleSeller, shop.RoleAdmin))
		gr.Post("/product/create/", h.create)
		gr.Post("/category/create/", h.createCategory)
		gr.Route("/product/modify/{id}/", func(mr chi.Router) {
			mr.Get("/", h.get)
			mr.Put("/", h.update)
			mr.Patch("/", h.update)
			mr.Delete("/", h.delete)
		})
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	params := shop.ProductListParams{
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
		Page:     page,
		PageSize: pageSize,
	}

	ps, err := h.Catalog.List(ctx, params)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if ps == nil {
		ps = []shop.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, h.Log, shop.Invalid("", "invalid multipart form"))
		return
	}

	p := shop.Product{ID: uuid.NewString()}
	if err := h.readProductForm(r, &p, false); err != nil {
		writeError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.requireCategory(ctx, p.CategoryID); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.saveUpload(r, &p); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.Catalog.Create(ctx, p); err != nil {
		h.Media.Remove(p.ImagePath, p.ThumbnailPath)
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, h.Log, shop.Invalid("", "invalid multipart form"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	partial := r.Method == http.MethodPatch
	if err := h.readProductForm(r, &p, partial); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.requireCategory(ctx, p.CategoryID); err != nil {
		writeError(w, h.Log, err)
		return
	}

	// A replacement image regenerates the thumbnail and discards the old
	// files.
	oldImage, oldThumb := p.ImagePath, p.ThumbnailPath
	replaced := false
	if _, _, err := r.FormFile("image"); err == nil {
		if err := h.saveUpload(r, &p); err != nil {
			writeError(w, h.Log, err)
			return
		}
		replaced = true
	}

	if err := h.Catalog.Update(ctx, p); err != nil {
		if replaced {
			h.Media.Remove(p.ImagePath, p.ThumbnailPath)
		}
		writeError(w, h.Log, err)
		return
	}
	if replaced {
		h.Media.Remove(oldImage, oldThumb)
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	p, err := h.Catalog.Get(ctx, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.Catalog.Delete(ctx, id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.Media.Remove(p.ImagePath, p.ThumbnailPath)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	if name == "" {
		writeError(w, h.Log, shop.Invalid("name", "name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c := shop.ProductCategory{ID: uuid.NewString(), Name: name}
	if err := h.Catalog.CreateCategory(ctx, c); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ProductsHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if cs == nil {
		cs = []shop.ProductCategory{}
	}
	writeJSON(w, http.StatusOK, cs)
}

// readProductForm fills p from multipart fields. With partial=true, absent
// fields keep their current values.
func (h *ProductsHandler) readProductForm(r *http.Request, p *shop.Product, partial bool) error {
	set := func(field string, dst *string) {
		if v := r.FormValue(field); v != "" || !partial {
			*dst = r.FormValue(field)
		}
	}
	set("name", &p.Name)
	set("description", &p.Description)
	set("category", &p.CategoryID)

	if v := r.FormValue("price"); v != "" || !partial {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return shop.Invalid("price", "price must be a decimal number")
		}
		if price.IsNegative() {
			return shop.Invalid("price", "price must not be negative")
		}
		p.Price = price
	}

	if !partial {
		if p.Name == "" {
			return shop.Invalid("name", "name is required")
		}
		if p.CategoryID == "" {
			return shop.Invalid("category", "category is required")
		}
	}
	return nil
}

func (h *ProductsHandler) requireCategory(ctx context.Context, id string) error {
	ok, err := h.Catalog.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return shop.Invalid("category", "unknown category")
	}
	return nil
}

func (h *ProductsHandler) saveUpload(r *http.Request, p *shop.Product) error {
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil // no image supplied
	}
	defer file.Close()

	imagePath, thumbPath, err := h.Media.Save(file)
	if err != nil {
		return shop.Invalid("image", "could not process image")
	}
	p.ImagePath, p.ThumbnailPath = imagePath, thumbPath
	return nil
}
