package handlers

import (
	"kopa/internal/middleware"
	"kopa/internal/services/report"
	"kopa/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService report.Service
}

func NewReportHandler(reportService report.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Monthly(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Month string `json:"month"`
	}
	if err := c.BodyParser(&input); err != nil || input.Month == "" {
		return response.BadRequest(c, "Month (YYYY-MM) is required")
	}

	chart, err := h.reportService.BuildMonthlyChart(c.Context(), claims.Role, claims.UserID, input.Month)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Report generated", fiber.Map{
		"id":           chart.ID,
		"month":        chart.Month,
		"chart":        chart.Chart,
		"generated_at": chart.GeneratedAt,
	})
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return response.Unauthorized(c)
	}

	month := c.Query("month")
	if month == "" {
		return response.BadRequest(c, "Month (YYYY-MM) is required")
	}

	chart, err := h.reportService.GetMonthlyChart(c.Context(), claims.Role, claims.UserID, month)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "OK", fiber.Map{
		"id":           chart.ID,
		"month":        chart.Month,
		"chart":        chart.Chart,
		"generated_at": chart.GeneratedAt,
	})
}

func (h *ReportHandler) Download(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid report id")
	}

	doc, err := h.reportService.DownloadPDF(c.Context(), uint(id))
	if err != nil {
		return response.DomainError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="report.pdf"`)
	return c.Send(doc)
}
