package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/wg-agent/internal/app/api/core"
	"github.com/h44z/wg-agent/internal/app/api/core/request"
	"github.com/h44z/wg-agent/internal/app/api/core/respond"
	"github.com/h44z/wg-agent/internal/app/api/v1/models"
	"github.com/h44z/wg-agent/internal/domain"
)

type Handler interface {
	// GetName returns the name of the handler.
	GetName() string
	// RegisterRoutes registers the routes for the handler.
	RegisterRoutes(g *routegroup.Bundle)
}

// @title WireGuard Agent API
// @version 1.0
// @description The wg-agent REST API manages the WireGuard interfaces and peers of one host.
// @description All state is read live from the wg and ip tools, nothing is cached.

// @securityDefinitions.basic BasicAuth

// @BasePath /api/v1

func NewRestApi(handlers ...Handler) core.ApiEndpointSetupFunc {
	return func() (core.ApiVersion, core.GroupSetupFn) {
		return "v1", func(group *routegroup.Bundle) {
			for _, h := range handlers {
				h.RegisterRoutes(group)
			}
		}
	}
}

// ParseServiceError maps an error of the service layer to a HTTP status code and an error model.
func ParseServiceError(err error) (int, models.Error) {
	if err == nil {
		return http.StatusInternalServerError, models.Error{
			Code:    http.StatusInternalServerError,
			Message: "unknown server error",
		}
	}

	var parseErr *domain.ParseError
	var cmdErr *domain.CommandError
	var stepErr *domain.StepError

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidData):
		code = http.StatusBadRequest
	case errors.As(err, &parseErr):
		code = http.StatusBadGateway
	}

	details := ""
	switch {
	case errors.As(err, &stepErr):
		details = fmt.Sprintf("step=%s state=%s rolled_back=%t", stepErr.Step, stepErr.State, stepErr.RolledBack)
		if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
			details += " stderr=" + cmdErr.Stderr
		}
	case errors.As(err, &cmdErr):
		details = cmdErr.Stderr
	}

	return code, models.Error{
		Code:    code,
		Message: err.Error(),
		Details: details,
	}
}

func respondError(w http.ResponseWriter, err error) {
	code, model := ParseServiceError(err)
	respond.JSON(w, code, model)
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respond.JSON(w, http.StatusBadRequest, models.Error{Code: http.StatusBadRequest, Message: message})
}

// decodeAndValidate reads the JSON body into target and validates it. It writes the error response itself.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate Validator, target any) bool {
	if err := request.BodyJson(r, target); err != nil {
		respondBadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	if err := validate.Struct(target); err != nil {
		respondBadRequest(w, err.Error())
		return false
	}
	return true
}

// region handler-interfaces

type Validator interface {
	// Struct validates the given struct.
	Struct(s interface{}) error
}

type InterfaceService interface {
	ListNames(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]domain.Interface, error)
	Get(ctx context.Context, name string) (*domain.Interface, error)
	ShowElement(ctx context.Context, name string, element string) (any, error)
	ShowConf(ctx context.Context, name string) (string, error)
	Create(ctx context.Context, req domain.InterfaceCreateRequest) (*domain.Interface, error)
	Remove(ctx context.Context, name string) error
	SaveConfig(ctx context.Context, name string) error
	ApplySet(ctx context.Context, name string, params domain.InterfaceParameters) (*domain.Interface, error)
	AddPeer(ctx context.Context, name string, peer domain.PeerParameters) (*domain.Interface, error)
	RemovePeer(ctx context.Context, name string, publicKey domain.Key) (*domain.Interface, error)
}

type KeyService interface {
	GeneratePrivateKey(ctx context.Context) (domain.Key, error)
	GeneratePresharedKey(ctx context.Context) (domain.Key, error)
	PublicKey(ctx context.Context, privateKey domain.Key) (domain.Key, error)
	KeyPair(ctx context.Context) (domain.KeyPair, error)
}

type ProvisioningService interface {
	Provision(ctx context.Context, name string, req domain.ProvisionRequest) (*domain.ProvisionResult, error)
	ProvisionQrCode(ctx context.Context, name string, req domain.ProvisionRequest) (io.Reader, error)
}

type AuditService interface {
	GetAll(ctx context.Context, iface string) ([]domain.AuditEntry, error)
}

// endregion handler-interfaces
