// Listing HTTP handlers.
//
// This file exposes the phone listings:
//   - GET  /                          (list, optional ?model=, weak ETag)
//   - GET  /admin/add                 (form descriptor)
//   - POST /admin/add                 (multipart create with "images")
//   - POST /admin/delete/:product_id  (delete)
package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/apple-market/internal/domain"
	"github.com/tbourn/apple-market/internal/services"
	"github.com/tbourn/apple-market/internal/utils"
)

// imagesField is the multipart field carrying product photos.
const imagesField = "images"

// ProductView is a product plus the public URLs of its photos.
type ProductView struct {
	domain.Product
	ImageURLs []string `json:"image_urls"`
}

// ListProductsResponse is the body of GET /.
type ListProductsResponse struct {
	Products []ProductView `json:"products"`
	// Models is the filter vocabulary.
	Models []string `json:"models"`
	// SelectedModel is the filter applied, "" for none.
	SelectedModel string `json:"selected_model"`
}

func (h *Handlers) viewOf(p domain.Product) ProductView {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, path.Join(h.opts.UploadsURL, url.PathEscape(img.Filename)))
	}
	return ProductView{Product: p, ImageURLs: urls}
}

// selectedModel returns the model filter that List will honor.
func selectedModel(q string) string {
	if domain.IsAllowedModel(q) {
		return q
	}
	return ""
}

// productsETag builds a weak validator from the filtered count and the
// highest id. ETag characters exclude spaces and quotes, so the model is
// query-escaped.
func productsETag(model string, count int64, maxID uint) string {
	return fmt.Sprintf(`W/"products:%s:%d:%d"`, url.QueryEscape(model), count, maxID)
}

// etagMatches reports whether an If-None-Match header matches etag.
func etagMatches(inm, etag string) bool {
	for _, part := range strings.Split(inm, ",") {
		part = strings.TrimSpace(part)
		if part == "*" || part == etag {
			return true
		}
	}
	return false
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List phone listings
// @Description Returns every listing, or only those of one model when ?model= names an allowed model. Unknown models are ignored. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Listings
// @Produce     json
// @Param       model          query   string  false  "Device model filter"          example(iPhone 13)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  handlers.ListProductsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      / [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	model := selectedModel(strings.TrimSpace(c.Query("model")))

	// ETag pre-check (best effort).
	if count, maxID, err := h.listings.Stats(ctx, model); err == nil {
		etag := productsETag(model, count, maxID)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && etagMatches(inm, etag) {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.listings.List(ctx, model)
	if err != nil {
		failErr(c, err, ErrCodeListFailed)
		return
	}
	views := make([]ProductView, 0, len(items))
	for _, p := range items {
		views = append(views, h.viewOf(p))
	}
	ok(c, http.StatusOK, ListProductsResponse{
		Products:      views,
		Models:        domain.AllowedModels,
		SelectedModel: model,
	})
}

// ProductForm godoc
// @ID          productForm
// @Summary     Product form descriptor
// @Description Describes the multipart form accepted by POST /admin/add, including the model vocabulary. Administrators only.
// @Tags        Listings
// @Produce     json
// @Success     200  {object}  handlers.FormDescriptor
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     403  {object}  handlers.ErrorResponse  "Administrators only"
// @Router      /admin/add [get]
func (h *Handlers) ProductForm(c *gin.Context) {
	if _, allowed := requireAdmin(c); !allowed {
		return
	}
	ok(c, http.StatusOK, FormDescriptor{
		Action:  "/admin/add",
		Method:  http.MethodPost,
		Enctype: "multipart/form-data",
		Fields: []FormField{
			{Name: "model", Type: "select", Required: true, Options: domain.AllowedModels},
			{Name: "price", Type: "number"},
			{Name: "condition", Type: "text"},
			{Name: "battery", Type: "number"},
			{Name: "memory", Type: "text"},
			{Name: "color", Type: "text"},
			{Name: "package", Type: "text"},
			{Name: "description", Type: "textarea"},
			{Name: imagesField, Type: "file"},
		},
		MaxBytes: h.opts.MaxUploadBytes,
	})
}

// CreateProduct godoc
// @ID          createProduct
// @Summary     Create a listing
// @Description Creates a listing with its photos. Numeric fields may be empty (zero) but must parse when present. Administrators only.
// @Tags        Listings
// @Accept      multipart/form-data
// @Produce     json
// @Param       model        formData  string  true   "Device model"  example(iPhone 13)
// @Param       price        formData  number  false  "Price"
// @Param       condition    formData  string  false  "Condition"
// @Param       battery      formData  integer false  "Battery health (%)"
// @Param       memory       formData  string  false  "Storage"
// @Param       color        formData  string  false  "Color"
// @Param       package      formData  string  false  "Package contents"
// @Param       description  formData  string  false  "Description"
// @Param       images       formData  file    false  "Photos (repeatable)"
// @Success     201  {object}  handlers.ProductView
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid field"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     403  {object}  handlers.ErrorResponse  "Administrators only"
// @Failure     413  {object}  handlers.ErrorResponse  "Request body too large"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/add [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	p, allowed := requireAdmin(c)
	if !allowed {
		return
	}

	if err := h.parseForm(c.Request); err != nil {
		failErr(c, err, "")
		return
	}
	if mf := c.Request.MultipartForm; mf != nil {
		defer mf.RemoveAll()
	}

	in, err := productInput(c)
	if err != nil {
		failErr(c, err, "")
		return
	}

	prod, err := h.listings.Create(c.Request.Context(), p, in, uploadsOf(c.Request.MultipartForm))
	if err != nil {
		failErr(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, h.viewOf(*prod))
}

// parseForm parses a multipart or urlencoded body. Malformed bodies are
// reported as bad input; an exceeded body cap keeps its MaxBytesError.
func (h *Handlers) parseForm(r *http.Request) error {
	var err error
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		err = r.ParseMultipartForm(h.multipartMemory())
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", errBadForm, err)
}

func (h *Handlers) multipartMemory() int64 {
	if h.opts.MaxUploadBytes > 0 && h.opts.MaxUploadBytes < defaultMultipartMemory {
		return h.opts.MaxUploadBytes
	}
	return defaultMultipartMemory
}

func productInput(c *gin.Context) (services.ProductInput, error) {
	price, err := utils.ParseFloatField("price", c.PostForm("price"))
	if err != nil {
		return services.ProductInput{}, err
	}
	battery, err := utils.ParseIntField("battery", c.PostForm("battery"))
	if err != nil {
		return services.ProductInput{}, err
	}
	return services.ProductInput{
		Model:       c.PostForm("model"),
		Price:       price,
		Condition:   c.PostForm("condition"),
		Battery:     battery,
		Memory:      c.PostForm("memory"),
		Color:       c.PostForm("color"),
		Package:     c.PostForm("package"),
		Description: c.PostForm("description"),
	}, nil
}

func uploadsOf(mf *multipart.Form) []services.Upload {
	if mf == nil {
		return nil
	}
	headers := mf.File[imagesField]
	out := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		out = append(out, services.Upload{
			Filename: fh.Filename,
			Open:     func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return out
}

// DeleteProduct godoc
// @ID          deleteProduct
// @Summary     Delete a listing
// @Description Deletes a listing, its image rows and its photo files. Administrators only.
// @Tags        Listings
// @Param       product_id  path  int  true  "Product ID"  minimum(1)
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid product id"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     403  {object}  handlers.ErrorResponse  "Administrators only"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/delete/{product_id} [post]
func (h *Handlers) DeleteProduct(c *gin.Context) {
	p, allowed := requireAdmin(c)
	if !allowed {
		return
	}
	id, err := utils.ParseID(c.Param("product_id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a positive integer")
		return
	}
	if err := h.listings.Delete(c.Request.Context(), p, id); err != nil {
		failErr(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}
