package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"account-hub/internal/audit"
	"account-hub/internal/middleware"
	"account-hub/internal/service"
	"account-hub/internal/store"
	"account-hub/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// AdminHandler serves the admin-only surface: role grants, the audit trail
// and account exports. The admin gate itself is middleware.AdminOnly.
type AdminHandler struct {
	Svc   *service.AccountService
	Store store.Store
	Trail *audit.Trail
}

func NewAdminHandler(svc *service.AccountService, st store.Store, trail *audit.Trail) *AdminHandler {
	return &AdminHandler{Svc: svc, Store: st, Trail: trail}
}

type setRoleReq struct {
	Role string `json:"role"`
}

// SetRole grants a role to the target account. This is the explicit
// elevation path; the register-time name allowlist is not involved.
func (h *AdminHandler) SetRole(c *gin.Context) {
	actor, ok := middleware.CurrentAccount(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, service.KindUnauthorized, "authentication required")
		return
	}

	var req setRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, service.KindMissingField, "invalid request body")
		return
	}

	target, err := h.Svc.SetRole(actor, c.Param("id"), req.Role)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}

	util.Success(c, util.Response{
		"account": target.Profile(),
	})
}

// ListAudit returns the most recent audit events, newest last.
func (h *AdminHandler) ListAudit(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	events, err := h.Trail.Tail(limit)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "audit trail unavailable")
		return
	}

	util.Success(c, util.Response{
		"events": events,
	})
}

var exportHeader = []string{"ID", "Full Name", "Email", "Phone", "Location", "Role", "Member Since"}

// ExportCSV streams the sanitized account table as CSV. Password hashes are
// not part of the row set by construction.
func (h *AdminHandler) ExportCSV(c *gin.Context) {
	accs, err := h.Store.List()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "account store unavailable")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"accounts_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeader)
	for i := range accs {
		a := &accs[i]
		writer.Write([]string{
			a.ID, a.FullName, a.Email, a.Phone, a.Location, a.Role, a.MemberSince,
		})
	}
}

// ExportXLSX streams the same table as an Excel workbook.
func (h *AdminHandler) ExportXLSX(c *gin.Context) {
	accs, err := h.Store.List()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "account store unavailable")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Accounts"
	index, err := f.NewSheet(sheet)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, service.KindStoreUnavailable, "build workbook failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for row := range accs {
		a := &accs[row]
		values := []string{a.ID, a.FullName, a.Email, a.Phone, a.Location, a.Role, a.MemberSince}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"accounts_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		// headers are out already; nothing sensible left to send
		return
	}
}
