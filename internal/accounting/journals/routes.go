package journals

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/preview", h.Preview)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/post", h.Post)
		r.Post("/void", h.Void)
		r.Post("/reverse", h.Reverse)
		r.Post("/lines", h.AddLine)
		r.Delete("/lines/{lineNumber}", h.RemoveLine)
	})
}
