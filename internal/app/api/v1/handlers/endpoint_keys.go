package handlers

import (
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-agent/internal/app/api/core/respond"
	"github.com/h44z/wg-agent/internal/app/api/v1/models"
	"github.com/h44z/wg-agent/internal/domain"
)

// KeyEndpoint generates and derives WireGuard keys.
type KeyEndpoint struct {
	keys     KeyService
	validate Validator
}

func NewKeyEndpoint(keys KeyService, validate Validator) *KeyEndpoint {
	return &KeyEndpoint{
		keys:     keys,
		validate: validate,
	}
}

func (e KeyEndpoint) GetName() string {
	return "KeyEndpoint"
}

func (e KeyEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.HandleFunc("GET /wg/genkey", e.handleGenKey())
	g.HandleFunc("GET /wg/genkeypair", e.handleGenKeyPair())
	g.HandleFunc("GET /wg/genpsk", e.handleGenPsk())
	g.HandleFunc("POST /wg/pubkey", e.handlePubKey())
}

// handleGenKey returns a HTTP handler function.
//
// @ID keys_handleGenKey
// @Tags Keys
// @Summary Generate a new private key.
// @Produce json
// @Success 200 {object} models.Key
// @Failure 500 {object} models.Error
// @Router /wg/genkey [get]
// @Security BasicAuth
func (e KeyEndpoint) handleGenKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := e.keys.GeneratePrivateKey(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.Key{Key: key.String()})
	}
}

// handleGenKeyPair returns a HTTP handler function.
//
// @ID keys_handleGenKeyPair
// @Tags Keys
// @Summary Generate a new private key together with its public key.
// @Produce json
// @Success 200 {object} models.KeyPair
// @Failure 500 {object} models.Error
// @Router /wg/genkeypair [get]
// @Security BasicAuth
func (e KeyEndpoint) handleGenKeyPair() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pair, err := e.keys.KeyPair(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.NewKeyPair(pair))
	}
}

// handleGenPsk returns a HTTP handler function.
//
// @ID keys_handleGenPsk
// @Tags Keys
// @Summary Generate a new preshared key.
// @Produce json
// @Success 200 {object} models.Key
// @Failure 500 {object} models.Error
// @Router /wg/genpsk [get]
// @Security BasicAuth
func (e KeyEndpoint) handleGenPsk() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := e.keys.GeneratePresharedKey(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.Key{Key: key.String()})
	}
}

// handlePubKey returns a HTTP handler function.
//
// @ID keys_handlePubKey
// @Tags Keys
// @Summary Derive the public key of a private key.
// @Param request body models.Key true "The private key."
// @Produce json
// @Success 200 {object} models.Key
// @Failure 400 {object} models.Error
// @Failure 500 {object} models.Error
// @Router /wg/pubkey [post]
// @Security BasicAuth
func (e KeyEndpoint) handlePubKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.Key
		if !decodeAndValidate(w, r, e.validate, &req) {
			return
		}

		key, err := e.keys.PublicKey(r.Context(), domain.Key(req.Key))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, models.Key{Key: key.String()})
	}
}
