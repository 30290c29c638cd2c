package handlers

import (
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-agent/internal/app/api/core/request"
	"github.com/h44z/wg-agent/internal/app/api/core/respond"
	"github.com/h44z/wg-agent/internal/app/api/v1/models"
	"github.com/h44z/wg-agent/internal/domain"
)

// InterfaceEndpoint changes interfaces and their peers.
type InterfaceEndpoint struct {
	interfaces InterfaceService
	validate   Validator
}

func NewInterfaceEndpoint(interfaces InterfaceService, validate Validator) *InterfaceEndpoint {
	return &InterfaceEndpoint{
		interfaces: interfaces,
		validate:   validate,
	}
}

func (e InterfaceEndpoint) GetName() string {
	return "InterfaceEndpoint"
}

func (e InterfaceEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.HandleFunc("POST /wg/interface", e.handleCreatePost())
	g.HandleFunc("DELETE /wg/interface/{ifc}", e.handleDelete())
	g.HandleFunc("POST /wg/interface/{ifc}/save", e.handleSavePost())
	g.HandleFunc("POST /wg/interface/{ifc}/peer", e.handlePeerPost())
	g.HandleFunc("DELETE /wg/interface/{ifc}/peer", e.handlePeerDelete())
	g.HandleFunc("PUT /wg/set/{ifc}", e.handleSetPut())
}

// handleCreatePost returns a HTTP handler function.
//
// @ID interface_handleCreatePost
// @Tags Interfaces
// @Summary Create a new WireGuard interface.
// @Param request body models.CreateInterfaceRequest true "The interface data."
// @Produce json
// @Success 201 {object} models.Interface
// @Failure 400 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/interface [post]
// @Security BasicAuth
func (e InterfaceEndpoint) handleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateInterfaceRequest
		if !decodeAndValidate(w, r, e.validate, &req) {
			return
		}

		iface, err := e.interfaces.Create(r.Context(), models.NewDomainCreateRequest(req))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, models.NewInterface(iface))
	}
}

// handleDelete returns a HTTP handler function.
//
// @ID interface_handleDelete
// @Tags Interfaces
// @Summary Remove a WireGuard interface, its files and its wg-quick unit. Removing a missing interface succeeds.
// @Param ifc path string true "The interface name."
// @Success 204 "No content if removal was successful"
// @Failure 400 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/interface/{ifc} [delete]
// @Security BasicAuth
func (e InterfaceEndpoint) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := e.interfaces.Remove(r.Context(), request.Path(r, "ifc")); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

// handleSavePost returns a HTTP handler function.
//
// @ID interface_handleSavePost
// @Tags Interfaces
// @Summary Persist the running configuration of an interface as wg-quick file.
// @Param ifc path string true "The interface name."
// @Success 204 "No content if the configuration was saved"
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/interface/{ifc}/save [post]
// @Security BasicAuth
func (e InterfaceEndpoint) handleSavePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := e.interfaces.SaveConfig(r.Context(), request.Path(r, "ifc")); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

// handlePeerPost returns a HTTP handler function.
//
// @ID interface_handlePeerPost
// @Tags Peers
// @Summary Add or update a peer of an interface.
// @Param ifc path string true "The interface name."
// @Param request body models.PeerParameters true "The peer parameters."
// @Produce json
// @Success 200 {object} models.Interface
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/interface/{ifc}/peer [post]
// @Security BasicAuth
func (e InterfaceEndpoint) handlePeerPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PeerParameters
		if !decodeAndValidate(w, r, e.validate, &req) {
			return
		}

		iface, err := e.interfaces.AddPeer(r.Context(), request.Path(r, "ifc"), *models.NewDomainPeerParameters(&req))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewInterface(iface))
	}
}

// handlePeerDelete returns a HTTP handler function.
//
// @ID interface_handlePeerDelete
// @Tags Peers
// @Summary Remove a peer from an interface.
// @Param ifc path string true "The interface name."
// @Param request body models.Key true "The public key of the peer."
// @Produce json
// @Success 200 {object} models.Interface
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/interface/{ifc}/peer [delete]
// @Security BasicAuth
func (e InterfaceEndpoint) handlePeerDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.Key
		if !decodeAndValidate(w, r, e.validate, &req) {
			return
		}

		iface, err := e.interfaces.RemovePeer(r.Context(), request.Path(r, "ifc"), domain.Key(req.Key))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewInterface(iface))
	}
}

// handleSetPut returns a HTTP handler function.
//
// @ID interface_handleSetPut
// @Tags Interfaces
// @Summary Apply a sparse wg set update to an interface and at most one peer.
// @Param ifc path string true "The interface name."
// @Param request body models.InterfaceParameters true "The update."
// @Produce json
// @Success 200 {object} models.Interface
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/set/{ifc} [put]
// @Security BasicAuth
func (e InterfaceEndpoint) handleSetPut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.InterfaceParameters
		if !decodeAndValidate(w, r, e.validate, &req) {
			return
		}

		iface, err := e.interfaces.ApplySet(r.Context(), request.Path(r, "ifc"), models.NewDomainInterfaceParameters(req))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewInterface(iface))
	}
}
