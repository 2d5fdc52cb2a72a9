package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-leads/internal/model"
	"github.com/iliyamo/edu-leads/internal/service"
)

// LeadService is the part of *service.LeadService the handlers use.
type LeadService interface {
	Submit(ctx context.Context, in service.SubmitInput) (model.Lead, error)
	ParseFilter(q service.LeadQuery) (model.LeadFilter, error)
	List(ctx context.Context, f model.LeadFilter) (model.LeadPage, error)
	UpdateStatus(ctx context.Context, id, status string) (model.Lead, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, period model.Period) (model.StatsSummary, error)
}

// LeadHandler serves the public submission endpoint and the admin lead
// endpoints.
type LeadHandler struct {
	Leads LeadService
}

func NewLeadHandler(leads LeadService) *LeadHandler {
	return &LeadHandler{Leads: leads}
}

type statusReq struct {
	Status string `json:"status"`
}

// Submit handles POST /api/leads.
func (h *LeadHandler) Submit(c echo.Context) error {
	var req service.SubmitInput
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	lead, err := h.Leads.Submit(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"lead": lead})
}

// List handles GET /api/leads?status=&startDate=&endDate=&page=&limit=.
func (h *LeadHandler) List(c echo.Context) error {
	f, err := h.Leads.ParseFilter(service.LeadQuery{
		Status:    c.QueryParam("status"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
		Page:      c.QueryParam("page"),
		Limit:     c.QueryParam("limit"),
	})
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.Leads.List(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	if page.Leads == nil {
		page.Leads = []model.Lead{}
	}
	return c.JSON(http.StatusOK, page)
}

// Stats handles GET /api/leads/stats?period=.
func (h *LeadHandler) Stats(c echo.Context) error {
	period, err := service.ParsePeriod(c.QueryParam("period"))
	if err != nil {
		return respondError(c, err)
	}
	sum, err := h.Leads.Stats(c.Request().Context(), period)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

// UpdateStatus handles PATCH /api/leads/:id with {"status": "..."}.
func (h *LeadHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	lead, err := h.Leads.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"lead": lead})
}

// Delete handles DELETE /api/leads/:id.
func (h *LeadHandler) Delete(c echo.Context) error {
	if err := h.Leads.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "lead deleted"})
}
