// Package handler holds the HTTP glue shared by the entity handlers:
// request binding and the policy dispatch that runs before every
// protected operation.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/principal"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
	"github.com/jwalitptl/chronosync/pkg/httputil"
	"github.com/jwalitptl/chronosync/pkg/validator"
)

// Tiers are the authenticated route groups, one per minimum role.
type Tiers struct {
	Employee *gin.RouterGroup
	Manager  *gin.RouterGroup
	Admin    *gin.RouterGroup
}

// Binder decodes the payload of one operation.
type Binder[R any] func(c *gin.Context) (R, error)

// Operation is the handler body that runs once the policy allowed the request.
type Operation[R any] func(c *gin.Context, actor principal.Principal, req R)

// WithPolicy resolves the caller, binds the payload and enforces the
// (entity, op) policy before running next. Policies may rewrite the
// payload; next receives that same value.
func WithPolicy[R any](enforcer *policy.Enforcer, entity policy.Entity, op policy.Operation, bind Binder[R], next Operation[R]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		actor, err := principal.FromContext(ctx)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		req, err := bind(c)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		if err := enforcer.Enforce(ctx, entity, op, actor, req); err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		next(c, actor, req)
	}
}

// BindJSON decodes and validates a JSON body.
func BindJSON[T any]() Binder[*T] {
	return func(c *gin.Context) (*T, error) {
		req := new(T)
		if err := c.ShouldBindJSON(req); err != nil {
			return nil, validator.BadRequest(err)
		}
		return req, nil
	}
}

// BindSearch is BindJSON that treats an empty body as an empty filter.
func BindSearch[T any]() Binder[*T] {
	return func(c *gin.Context) (*T, error) {
		req := new(T)
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			return req, nil
		}
		if err := c.ShouldBindJSON(req); err != nil {
			return nil, validator.BadRequest(err)
		}
		return req, nil
	}
}

// BindQueryID reads the ?id= parameter.
func BindQueryID(c *gin.Context) (int64, error) {
	var req model.IDRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return 0, validator.BadRequest(err)
	}
	return req.ID, nil
}

// BindPathID reads the :id path parameter.
func BindPathID(c *gin.Context) (int64, error) {
	var req model.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		return 0, validator.BadRequest(err)
	}
	return req.ID, nil
}

// BindByID binds :id into a search request of T through set, so a single
// fetch runs under the same read policy and scoping as a search.
func BindByID[T any](set func(req *T, id int64)) Binder[*T] {
	return func(c *gin.Context) (*T, error) {
		id, err := BindPathID(c)
		if err != nil {
			return nil, err
		}
		req := new(T)
		set(req, id)
		return req, nil
	}
}

// RespondWithFirst writes the single element of a by-id search or a not
// found error for resource.
func RespondWithFirst[T any](c *gin.Context, content []T, err error, resource string) {
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if len(content) == 0 {
		httputil.RespondWithError(c, apperrors.NotFound(resource, nil))
		return
	}
	httputil.RespondWithSuccess(c, content[0])
}
