package handlers

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(r *mux.Router, h *ProxyHandler) {
	r.HandleFunc("/", h.HandleHealth).Methods("GET")

	public := r.PathPrefix("/public").Subrouter()
	public.Use(h.RequireSharedKey)
	public.HandleFunc("/list", h.HandleList).Methods("GET")
	public.HandleFunc("/download", h.HandleDownload).Methods("GET")
	public.HandleFunc("/pages", h.HandlePages).Methods("GET")
	public.HandleFunc("/page", h.HandlePage).Methods("GET")

	// Graph sends the validation handshake and notifications with differing
	// methods, so no method filter here.
	r.HandleFunc("/graph-webhook", h.HandleWebhook)
}
