package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Pagination query parameters of the search endpoint.
const (
	paramFirst = "first"
	paramMax   = "max"
)

// FederationHandler serves the identity host's user and credential requests.
type FederationHandler struct {
	FederationService service.FederationProvider
}

func NewFederationHandler(federationService service.FederationProvider) *FederationHandler {
	return &FederationHandler{FederationService: federationService}
}

// GetUser resolves an opaque user id.
func (h *FederationHandler) GetUser(c echo.Context) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.FederationService.GetUser(c.Request().Context(), id)
	return userResponse(c, user, err)
}

func (h *FederationHandler) GetUserByUsername(c echo.Context) error {
	username, err := pathParam(c, "username")
	if err != nil {
		return err
	}
	user, err := h.FederationService.GetUserByUsername(c.Request().Context(), username)
	return userResponse(c, user, err)
}

func (h *FederationHandler) GetUserByEmail(c echo.Context) error {
	email, err := pathParam(c, "email")
	if err != nil {
		return err
	}
	user, err := h.FederationService.GetUserByEmail(c.Request().Context(), email)
	return userResponse(c, user, err)
}

func userResponse(c echo.Context, user *models.UserEntity, err error) error {
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		log.Error().Err(err).Str("path", c.Path()).Msg("User lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "User lookup failed")
	}
	return c.JSON(http.StatusOK, user)
}

// SearchUsers searches with every query parameter except first and max as
// criteria.
func (h *FederationHandler) SearchUsers(c echo.Context) error {
	first, err := intParam(c, paramFirst)
	if err != nil {
		return err
	}
	maxResults, err := intParam(c, paramMax)
	if err != nil {
		return err
	}

	criteria := query.CriteriaFromValues(c.QueryParams(), paramFirst, paramMax)
	users := h.FederationService.SearchUsers(c.Request().Context(), criteria, first, maxResults)
	return c.JSON(http.StatusOK, models.UserListResponse{Users: users})
}

func (h *FederationHandler) SearchUsersByAttribute(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Attribute name is required")
	}

	users := h.FederationService.SearchUsersByAttribute(c.Request().Context(), name, c.QueryParam("value"))
	return c.JSON(http.StatusOK, models.UserListResponse{Users: users})
}

// ValidateCredential checks a presented secret. An unsupported credential type
// is reported as invalid rather than as an error.
func (h *FederationHandler) ValidateCredential(c echo.Context) error {
	req := new(models.CredentialValidationRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	valid, err := h.FederationService.ValidateCredential(c.Request().Context(), *req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountLocked):
			return echo.NewHTTPError(http.StatusLocked, "Account is temporarily locked")
		case errors.Is(err, service.ErrUnsupportedCredentialType):
			return c.JSON(http.StatusOK, models.CredentialValidationResponse{Valid: false})
		default:
			log.Error().Err(err).Msg("Credential validation failed")
			return echo.NewHTTPError(http.StatusInternalServerError, "Credential validation failed")
		}
	}
	return c.JSON(http.StatusOK, models.CredentialValidationResponse{Valid: valid})
}

func (h *FederationHandler) SupportsCredentialType(c echo.Context) error {
	credentialType, err := pathParam(c, "type")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.CredentialTypeResponse{
		Type:      credentialType,
		Supported: h.FederationService.SupportsCredentialType(credentialType),
	})
}

// pathParam returns a decoded path parameter. The router matches on the raw
// path, so ids like "f:comp1:u1" and emails arrive percent-encoded.
func pathParam(c echo.Context, name string) (string, error) {
	value, err := url.PathUnescape(c.Param(name))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid path parameter "+name)
	}
	return value, nil
}

// intParam parses an optional integer query parameter; absent is 0.
func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Query parameter '"+name+"' must be an integer")
	}
	return v, nil
}
