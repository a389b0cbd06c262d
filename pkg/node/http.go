package node

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/movedao/dao-node/pkg/errors"
	"github.com/movedao/dao-node/pkg/tx"
)

type WebServer struct {
	Engine *gin.Engine
	host   string
	port   uint16
}

type Controller struct {
	Service *Service
}

type ErrorResponse struct {
	Error string `json:"message"`
	Kind  string `json:"kind"`
}

type MutationRequest struct {
	Action tx.Action `json:"action"`
	Args   tx.Args   `json:"args"`
}

// InitServerAndController wires the local API around the node service.
func InitServerAndController(service *Service, host string, port uint16) *WebServer {
	server := &WebServer{
		Engine: gin.Default(),
		host:   host,
		port:   port,
	}

	ctrl := &Controller{Service: service}
	server.initRoutes(ctrl)
	return server
}

func (s *WebServer) Run() {
	if err := s.Engine.Run(fmt.Sprintf("%s:%v", s.host, s.port)); err != nil {
		panic(err.Error())
	}
}

func (s *WebServer) initRoutes(ctrl *Controller) {
	public := s.Engine.Group("/api/v1")
	public.GET("/organizations", ctrl.listOrganizations)
	public.GET("/organizations/:id", ctrl.getOrganization)
	public.POST("/resync", ctrl.resync)
	public.POST("/mutations", ctrl.submitMutation)
}

func (ctrl *Controller) listOrganizations(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.Service.ListOrganizations())
}

func (ctrl *Controller) getOrganization(c *gin.Context) {
	org, err := ctrl.Service.GetOrganization(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (ctrl *Controller) resync(c *gin.Context) {
	if err := ctrl.Service.Bootstrap(c.Request.Context()); err != nil {
		abortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.Service.ListOrganizations())
}

func (ctrl *Controller) submitMutation(c *gin.Context) {
	var request MutationRequest
	if err := c.BindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "unable to process fields from the request"})
		return
	}

	receipt, err := ctrl.Service.SubmitMutation(c.Request.Context(), request.Action, request.Args)
	if err != nil {
		abortWithKind(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// abortWithKind maps the failure taxonomy onto HTTP statuses; the kind
// travels with the message so callers can choose their own presentation.
func abortWithKind(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	kind := "internal"
	switch {
	case stderrors.Is(err, errors.ErrNotFound):
		status, kind = http.StatusNotFound, "not-found"
	case stderrors.Is(err, errors.ErrNotAuthorizedLocally):
		status, kind = http.StatusForbidden, "not-authorized-locally"
	case stderrors.Is(err, errors.ErrAuthorizationFailure):
		status, kind = http.StatusForbidden, "authorization-failure"
	case stderrors.Is(err, errors.ErrInvalidShape):
		status, kind = http.StatusBadGateway, "invalid-shape"
	case stderrors.Is(err, errors.ErrFetchFailure):
		status, kind = http.StatusBadGateway, "fetch-failure"
	case stderrors.Is(err, errors.ErrSubmissionFailure):
		status, kind = http.StatusBadGateway, "submission-failure"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Kind: kind})
}
