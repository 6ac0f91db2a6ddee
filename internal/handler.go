package internal

import "github.com/eghojansu/stick/pkg/event"

// Handler declares routes on a router.
//
// Example:
//
//	type Blog struct{ repo *Repo }
//
//	func (h *Blog) Routes(r stick.Router) {
//	    r.Route("GET blog /blog", h.index)
//	    r.Route("GET blog_post /blog/@slug 60", h.show)
//	}
type Handler interface {
	Routes(r Router)
}

// Router is the registration surface shared by App and Handler.Routes.
type Router interface {
	Route(spec string, h HandlerFunc)
	Redirect(spec, target string, permanent bool)
	Handle(name string, h HandlerFunc)
	Resource(name string, res Resource)
	Rest(spec, name string)
}

// HandlerFunc is the signature for controllers. The Result shapes the
// response; a nil Result leaves the response as the controller wrote it.
// Returning a non-nil error renders an error response.
type HandlerFunc func(c Context) (Result, error)

// Middleware wraps a controller to add cross-cutting concerns.
//
// Example:
//
//	func Auth(next stick.HandlerFunc) stick.HandlerFunc {
//	    return func(c stick.Context) (stick.Result, error) {
//	        if c.Get("SESSION.user", nil) == nil {
//	            return nil, c.Reroute("login", false)
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// Listener handles a dispatch event. Returning event.ErrStop (exported
// as stick.ErrStop) ends the current phase early.
type Listener = event.Listener[Context]

// Resource is a REST controller registered with Router.Resource.
type Resource interface {
	Index(c Context) (Result, error)
	Store(c Context) (Result, error)
	Show(c Context) (Result, error)
	Update(c Context) (Result, error)
	Delete(c Context) (Result, error)
}
