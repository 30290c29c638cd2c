package handlers

import (
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-agent/internal/app/api/core/request"
	"github.com/h44z/wg-agent/internal/app/api/core/respond"
	"github.com/h44z/wg-agent/internal/app/api/v1/models"
)

// ProvisioningEndpoint creates new remote peers including their configuration file.
type ProvisioningEndpoint struct {
	provisioning ProvisioningService
	validate     Validator
}

func NewProvisioningEndpoint(provisioning ProvisioningService, validate Validator) *ProvisioningEndpoint {
	return &ProvisioningEndpoint{
		provisioning: provisioning,
		validate:     validate,
	}
}

func (e ProvisioningEndpoint) GetName() string {
	return "ProvisioningEndpoint"
}

func (e ProvisioningEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.HandleFunc("POST /wg/interface/{ifc}/provision", e.handleProvisionPost())
	g.HandleFunc("POST /wg/interface/{ifc}/provision/qr", e.handleProvisionQrPost())
}

// handleProvisionPost returns a HTTP handler function.
//
// @ID provisioning_handleProvisionPost
// @Tags Provisioning
// @Summary Create a new peer on the interface and return the configuration file for the remote side.
// @Param ifc path string true "The interface name."
// @Param request body models.ProvisionRequest true "The provisioning parameters."
// @Produce json
// @Success 200 {object} models.ProvisionResult
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/interface/{ifc}/provision [post]
// @Security BasicAuth
func (e ProvisioningEndpoint) handleProvisionPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ProvisionRequest
		if !decodeAndValidate(w, r, e.validate, &req) {
			return
		}

		result, err := e.provisioning.Provision(r.Context(), request.Path(r, "ifc"), models.NewDomainProvisionRequest(req))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewProvisionResult(result))
	}
}

// handleProvisionQrPost returns a HTTP handler function.
//
// @ID provisioning_handleProvisionQrPost
// @Tags Provisioning
// @Summary Create a new peer on the interface and return the configuration file as PNG QR code.
// @Param ifc path string true "The interface name."
// @Param request body models.ProvisionRequest true "The provisioning parameters."
// @Produce png
// @Success 200 {file} binary
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/interface/{ifc}/provision/qr [post]
// @Security BasicAuth
func (e ProvisioningEndpoint) handleProvisionQrPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ProvisionRequest
		if !decodeAndValidate(w, r, e.validate, &req) {
			return
		}

		img, err := e.provisioning.ProvisionQrCode(r.Context(), request.Path(r, "ifc"),
			models.NewDomainProvisionRequest(req))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Reader(w, http.StatusOK, "image/png", img)
	}
}
