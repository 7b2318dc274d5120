package store

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pickme-go/log/v2"
)

type Err struct {
	Err string `json:"error"`
}

// MakeEndpoints registers the store query routes
//
//	GET /stores               list of store names
//	GET /stores/{store}       every key and value of a store
//	GET /stores/{store}/{key} a single value
func MakeEndpoints(r *mux.Router, registry Registry, logger log.Logger) {
	r.HandleFunc(`/stores`, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set(`Content-Type`, `application/json`)
		if err := json.NewEncoder(writer).Encode(registry.List()); err != nil {
			logger.Error(err)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc(`/stores/{store}`, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set(`Content-Type`, `application/json`)

		store, ok := registry.Store(mux.Vars(request)[`store`])
		if !ok {
			writeError(writer, logger, http.StatusNotFound, `store does not exist`)
			return
		}

		kvs, err := store.ReadAll(request.Context())
		if err != nil {
			writeError(writer, logger, http.StatusInternalServerError, err.Error())
			return
		}

		if err := json.NewEncoder(writer).Encode(kvs); err != nil {
			logger.Error(err)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc(`/stores/{store}/{key}`, func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set(`Content-Type`, `application/json`)
		vars := mux.Vars(request)

		store, ok := registry.Store(vars[`store`])
		if !ok {
			writeError(writer, logger, http.StatusNotFound, `store does not exist`)
			return
		}

		value, found, err := store.Read(request.Context(), vars[`key`])
		if err != nil {
			writeError(writer, logger, http.StatusInternalServerError, err.Error())
			return
		}

		if !found {
			writeError(writer, logger, http.StatusNotFound, fmt.Sprintf(`key [%s] does not exist`, vars[`key`]))
			return
		}

		if err := json.NewEncoder(writer).Encode(KeyValue{Key: vars[`key`], Value: value}); err != nil {
			logger.Error(err)
		}
	}).Methods(http.MethodGet)
}

func writeError(w http.ResponseWriter, logger log.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Err{Err: msg}); err != nil {
		logger.Error(err)
	}
}
