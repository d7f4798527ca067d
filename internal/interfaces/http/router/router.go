// Package router wires handlers onto the gin engine under the /api prefix.
package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar func(rg *gin.RouterGroup)

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	prefix     string
	registrars []RouteRegistrar
}

// NewRouter creates a new Router instance serving under /api
func NewRouter(engine *gin.Engine) *Router {
	return &Router{
		engine: engine,
		prefix: "/api",
	}
}

// Register adds a RouteRegistrar to be registered on Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.prefix)
	for _, registrar := range r.registrars {
		registrar(api)
	}
}

// Engine returns the underlying gin engine, for routes outside the API
// prefix such as /health
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
