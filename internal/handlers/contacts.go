package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/vlasenko/contacts_api/internal/birthdays"
	"github.com/vlasenko/contacts_api/internal/logging"
	"github.com/vlasenko/contacts_api/internal/middleware"
	"github.com/vlasenko/contacts_api/internal/models"
	"github.com/vlasenko/contacts_api/internal/repository"
	"github.com/vlasenko/contacts_api/internal/service/search"
	"github.com/vlasenko/contacts_api/internal/util"
)

type ContactHandler struct {
	Contacts *repository.ContactRepo
	ES       *elasticsearch.Client
	Index    string
}

type contactRequest struct {
	Name     string    `json:"name"`
	Lastname string    `json:"lastname"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Birthday time.Time `json:"birthday"`
	Note     string    `json:"note"`
}

func (h *ContactHandler) List(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	contacts, err := h.Contacts.GetAll(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandler) GetByID(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	contact, err := h.Contacts.GetByID(ctx, user.ID, uint(id))
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "NOT FOUND")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) GetByName(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	contacts, err := h.Contacts.GetByName(ctx, user.ID, c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandler) GetByLastname(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	contacts, err := h.Contacts.GetByLastname(ctx, user.ID, c.Param("lastname"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandler) GetByEmail(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	contact, err := h.Contacts.GetByEmail(ctx, user.ID, c.Param("email"))
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "NOT FOUND")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, contact)
}

// BirthdaysAlongWeek returns the contacts whose birthday falls within the
// next seven days.
func (h *ContactHandler) BirthdaysAlongWeek(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	contacts, err := h.Contacts.GetAll(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, birthdays.Upcoming(contacts, time.Now()))
}

func (h *ContactHandler) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	contact := &models.Contact{
		Name:     req.Name,
		Lastname: req.Lastname,
		Email:    req.Email,
		Phone:    req.Phone,
		Birthday: req.Birthday,
		Note:     req.Note,
		UserID:   user.ID,
	}
	ctx, cancel := opCtx(c)
	defer cancel()
	if err := h.Contacts.Create(ctx, contact); err != nil {
		return echo.NewHTTPError(http.StatusConflict, "contact already exists")
	}

	h.index(c, contact)
	return c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Update(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}

	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	contact, err := h.Contacts.Update(ctx, user.ID, &models.Contact{
		ID:       uint(id),
		Name:     req.Name,
		Lastname: req.Lastname,
		Email:    req.Email,
		Phone:    req.Phone,
		Birthday: req.Birthday,
		Note:     req.Note,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "NOT FOUND")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.index(c, contact)
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	contact, err := h.Contacts.Delete(ctx, user.ID, uint(id))
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "NOT FOUND")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.deindex(c, contact.ID)
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Search(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query error")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	ctx, cancel := opCtx(c)
	defer cancel()

	total, contacts, err := search.Search(ctx, h.ES, h.Index, user.ID, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "contacts": contacts})
}

// index mirrors the contact into the search index; index unavailability
// never fails the write.
func (h *ContactHandler) index(c echo.Context, contact *models.Contact) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.Index(ctx, h.ES, h.Index, contact); err != nil {
		logging.FromContext(c.Request().Context()).Error("es_index_failed", "contact_id", contact.ID, "error", err)
	}
}

func (h *ContactHandler) deindex(c echo.Context, contactID uint) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.Remove(ctx, h.ES, h.Index, contactID); err != nil {
		logging.FromContext(c.Request().Context()).Error("es_delete_failed", "contact_id", contactID, "error", err)
	}
}
