package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
	"github.com/circuitcraft/academy-admin/internal/core/ports"
)

// ContentHandler serves the admin CRUD endpoints of one content kind. The
// records are their own wire format.
type ContentHandler[T domain.Content] struct {
	content ports.ContentService[T]
	newItem func() T
}

// NewContentHandler returns a handler for svc. newItem allocates the value a
// request body is bound into.
func NewContentHandler[T domain.Content](svc ports.ContentService[T], newItem func() T) *ContentHandler[T] {
	return &ContentHandler[T]{content: svc, newItem: newItem}
}

// Register mounts the routes under g at /<kind>.
func (h *ContentHandler[T]) Register(g *echo.Group) {
	r := g.Group("/" + string(h.content.Kind()))
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

// List returns the records of one kind, optionally narrowed by ?q= (title or
// description, case-insensitive) and ?category=.
//
// @Summary      List site content
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Param        kind      path      string  true   "courses, workshops, electronics or projects"
// @Param        q         query     string  false  "Search text"
// @Param        category  query     string  false  "Exact category"
// @Success      200       {array}   object
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /admin/{kind} [get]
func (h *ContentHandler[T]) List(c echo.Context) error {
	items, err := h.content.List(c.Request().Context(), domain.ContentQuery{
		Search:   c.QueryParam("q"),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one record.
//
// @Summary      Get site content
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "courses, workshops, electronics or projects"
// @Param        id    path      string  true  "Record id"
// @Success      200   {object}  object
// @Failure      404   {object}  errorResponse
// @Router       /admin/{kind}/{id} [get]
func (h *ContentHandler[T]) Get(c echo.Context) error {
	item, err := h.content.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Create adds a record. Any id or timestamps in the body are replaced.
//
// @Summary      Create site content
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "courses, workshops, electronics or projects"
// @Success      201   {object}  object
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/{kind} [post]
func (h *ContentHandler[T]) Create(c echo.Context) error {
	item, err := h.bind(c)
	if err != nil {
		return err
	}
	created, err := h.content.Create(c.Request().Context(), item)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Update replaces a record.
//
// @Summary      Update site content
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "courses, workshops, electronics or projects"
// @Param        id    path      string  true  "Record id"
// @Success      200   {object}  object
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/{kind}/{id} [put]
func (h *ContentHandler[T]) Update(c echo.Context) error {
	item, err := h.bind(c)
	if err != nil {
		return err
	}
	updated, err := h.content.Update(c.Request().Context(), c.Param("id"), item)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a record.
//
// @Summary      Delete site content
// @Tags         content
// @Security     BearerAuth
// @Param        kind  path  string  true  "courses, workshops, electronics or projects"
// @Param        id    path  string  true  "Record id"
// @Success      204
// @Failure      404   {object}  errorResponse
// @Router       /admin/{kind}/{id} [delete]
func (h *ContentHandler[T]) Delete(c echo.Context) error {
	if err := h.content.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// bind decodes the request body into a fresh record. Path and query values
// never reach the record.
func (h *ContentHandler[T]) bind(c echo.Context) (T, error) {
	item := h.newItem()
	if err := (&echo.DefaultBinder{}).BindBody(c, item); err != nil {
		var zero T
		return zero, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return item, nil
}
