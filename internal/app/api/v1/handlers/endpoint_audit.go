package handlers

import (
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-agent/internal/app/api/core/request"
	"github.com/h44z/wg-agent/internal/app/api/core/respond"
	"github.com/h44z/wg-agent/internal/app/api/v1/models"
)

type AuditEndpoint struct {
	audit AuditService
}

func NewAuditEndpoint(audit AuditService) *AuditEndpoint {
	return &AuditEndpoint{
		audit: audit,
	}
}

func (e AuditEndpoint) GetName() string {
	return "AuditEndpoint"
}

func (e AuditEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.HandleFunc("GET /audit/entries", e.handleEntriesGet())
}

// handleEntriesGet returns a HTTP handler function.
//
// @ID audit_handleEntriesGet
// @Tags Audit
// @Summary Get the audit trail, newest entries first.
// @Param interface query string false "Only return entries of this interface."
// @Produce json
// @Success 200 {object} []models.AuditEntry
// @Failure 500 {object} models.Error
// @Router /audit/entries [get]
// @Security BasicAuth
func (e AuditEndpoint) handleEntriesGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := e.audit.GetAll(r.Context(), request.Query(r, "interface"))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewAuditEntries(entries))
	}
}
