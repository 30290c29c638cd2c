package handlers

import (
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-agent/internal/app/api/core/request"
	"github.com/h44z/wg-agent/internal/app/api/core/respond"
	"github.com/h44z/wg-agent/internal/app/api/v1/models"
)

// ShowEndpoint exposes the read-only wg show and wg showconf views.
type ShowEndpoint struct {
	interfaces InterfaceService
}

func NewShowEndpoint(interfaces InterfaceService) *ShowEndpoint {
	return &ShowEndpoint{
		interfaces: interfaces,
	}
}

func (e ShowEndpoint) GetName() string {
	return "ShowEndpoint"
}

func (e ShowEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.HandleFunc("GET /wg/show", e.handleShowAll())
	g.HandleFunc("GET /wg/show/interfaces", e.handleShowInterfaces())
	g.HandleFunc("GET /wg/show/{ifc}", e.handleShowInterface())
	g.HandleFunc("GET /wg/show/{ifc}/{element}", e.handleShowElement())
	g.HandleFunc("GET /wg/showconf/{ifc}", e.handleShowConf())
}

// handleShowAll returns a HTTP handler function.
//
// @ID show_handleShowAll
// @Tags Show
// @Summary Get the state of all WireGuard interfaces.
// @Produce json
// @Success 200 {object} models.ShowAll
// @Failure 500 {object} models.Error
// @Failure 502 {object} models.Error
// @Router /wg/show [get]
// @Security BasicAuth
func (e ShowEndpoint) handleShowAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		interfaces, err := e.interfaces.List(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewShowAll(interfaces))
	}
}

// handleShowInterfaces returns a HTTP handler function.
//
// @ID show_handleShowInterfaces
// @Tags Show
// @Summary Get the names of all WireGuard interfaces.
// @Produce json
// @Success 200 {object} models.ShowInterfaces
// @Failure 500 {object} models.Error
// @Router /wg/show/interfaces [get]
// @Security BasicAuth
func (e ShowEndpoint) handleShowInterfaces() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := e.interfaces.ListNames(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		if names == nil {
			names = []string{}
		}

		respond.JSON(w, http.StatusOK, models.ShowInterfaces{Interfaces: names})
	}
}

// handleShowInterface returns a HTTP handler function.
//
// @ID show_handleShowInterface
// @Tags Show
// @Summary Get the state of one WireGuard interface.
// @Param ifc path string true "The interface name."
// @Produce json
// @Success 200 {object} models.Interface
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/show/{ifc} [get]
// @Security BasicAuth
func (e ShowEndpoint) handleShowInterface() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iface, err := e.interfaces.Get(r.Context(), request.Path(r, "ifc"))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewInterface(iface))
	}
}

// handleShowElement returns a HTTP handler function.
//
// @ID show_handleShowElement
// @Tags Show
// @Summary Get a single element of one WireGuard interface.
// @Param ifc path string true "The interface name."
// @Param element path string true "public-key, private-key, listen-port, fwmark, peers, preshared-keys, endpoints, allowed-ips, latest-handshakes, persistent-keepalive or transfer"
// @Produce json
// @Success 200 {object} any
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/show/{ifc}/{element} [get]
// @Security BasicAuth
func (e ShowEndpoint) handleShowElement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := e.interfaces.ShowElement(r.Context(), request.Path(r, "ifc"), request.Path(r, "element"))
		if err != nil {
			respondError(w, err)
			return
		}

		model, err := models.NewShowElement(result)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model)
	}
}

// handleShowConf returns a HTTP handler function.
//
// @ID show_handleShowConf
// @Tags Show
// @Summary Download the wg showconf output of one WireGuard interface.
// @Param ifc path string true "The interface name."
// @Produce plain
// @Success 200 {string} string
// @Failure 400 {object} models.Error
// @Failure 404 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/showconf/{ifc} [get]
// @Security BasicAuth
func (e ShowEndpoint) handleShowConf() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := request.Path(r, "ifc")
		conf, err := e.interfaces.ShowConf(r.Context(), name)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Attachment(w, http.StatusOK, name+".conf", "text/plain;charset=utf-8", []byte(conf))
	}
}
