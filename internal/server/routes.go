package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.loggingMw, s.maxBytesMw)

	publicAPI := api.PathPrefix("/public").Subrouter()
	publicAPI.Use(s.corsMw)
	publicAPI.HandleFunc("/timers/active", s.timerActive()).Methods(http.MethodGet, http.MethodOptions)
	publicAPI.HandleFunc("/timers/{timerID}/click", s.timerClick()).Methods(http.MethodPost, http.MethodOptions)

	api.HandleFunc("/webhooks", s.webhook()).Methods(http.MethodPost)

	timerAPI := api.PathPrefix("/timers").Subrouter()
	timerAPI.Use(s.authMw)
	timerAPI.HandleFunc("", s.timerList()).Methods(http.MethodGet)
	timerAPI.HandleFunc("", s.timerCreate()).Methods(http.MethodPost)
	timerAPI.HandleFunc("/{timerID}", s.timerGetOne()).Methods(http.MethodGet)
	timerAPI.HandleFunc("/{timerID}", s.timerUpdate()).Methods(http.MethodPut)
	timerAPI.HandleFunc("/{timerID}", s.timerDelete()).Methods(http.MethodDelete)
	timerAPI.HandleFunc("/{timerID}/toggle", s.timerToggle()).Methods(http.MethodPatch)
	timerAPI.PathPrefix("").Handler(http.NotFoundHandler())

	productAPI := api.PathPrefix("/products").Subrouter()
	productAPI.Use(s.authMw)
	productAPI.HandleFunc("", s.productList()).Methods(http.MethodGet)

	return r
}
