package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Handlers mounts several handlers on one router.
type Handlers []Handler

func (h Handlers) RegisterRoutes(router *httprouter.Router) {
	for _, handler := range h {
		handler.RegisterRoutes(router)
	}
}
