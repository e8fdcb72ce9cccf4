// Package rest is the local control service: HTTP servers bound to the
// negotiated loopback candidates, serving the hosted page and its API
// against the shared framework handle.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"liftoff/internal/assets"
	"liftoff/internal/framework"
)

type apiHandler struct {
	router *mux.Router
	handle *framework.Handle
	logger *zap.Logger
}

// Router builds the control service handler: /api endpoints against the
// shared handle, the bundled front end at the root.
func Router(handle *framework.Handle, logger *zap.Logger) http.Handler {
	rootRouter := mux.NewRouter()

	api := apiHandler{
		router: rootRouter.PathPrefix("/api").Subrouter(),
		handle: handle,
		logger: logger,
	}
	api.router.Use(requestLogger(logger))

	api.router.HandleFunc("/attrs", api.getAttrs).Methods(http.MethodGet)
	api.router.HandleFunc("/installation-status", api.getInstallationStatus).Methods(http.MethodGet)
	api.router.HandleFunc("/install-path", api.updateInstallPath).Methods(http.MethodPost)

	rootRouter.PathPrefix("/").Handler(assets.Handler())

	// Wrapping the whole router keeps preflight OPTIONS requests reachable;
	// mux middleware only runs on matched routes.
	return cors.AllowAll().Handler(rootRouter)
}

type attrsResponse struct {
	Name      string             `json:"name"`
	Publisher string             `json:"publisher,omitempty"`
	Homepage  string             `json:"homepage,omitempty"`
	Packages  []packageAttribute `json:"packages"`
}

type packageAttribute struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

func (h *apiHandler) getAttrs(w http.ResponseWriter, r *http.Request) {
	var resp attrsResponse
	h.handle.Read(func(f *framework.Framework) {
		resp.Name = f.Config.General.Name
		resp.Publisher = f.Config.General.Publisher
		resp.Homepage = f.Config.General.Homepage
		resp.Packages = make([]packageAttribute, 0, len(f.Config.Packages))
		for _, p := range f.Config.Packages {
			resp.Packages = append(resp.Packages, packageAttribute{
				Name:        p.Name,
				Description: p.Description,
				Default:     p.Default,
			})
		}
	})
	// The lock is released before the response is written.
	writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	SessionID    string                   `json:"session_id"`
	FreshInstall bool                     `json:"fresh_install"`
	InstallPath  string                   `json:"install_path"`
	Packages     []framework.LocalPackage `json:"packages"`
}

func (h *apiHandler) getInstallationStatus(w http.ResponseWriter, r *http.Request) {
	var resp statusResponse
	h.handle.Read(func(f *framework.Framework) {
		resp.SessionID = f.Database.SessionID
		resp.FreshInstall = f.FreshInstall
		resp.InstallPath = f.Database.InstallPath
		resp.Packages = append([]framework.LocalPackage(nil), f.Database.Packages...)
	})
	writeJSON(w, http.StatusOK, resp)
}

type installPathRequest struct {
	Path string `json:"path"`
}

func (h *apiHandler) updateInstallPath(w http.ResponseWriter, r *http.Request) {
	var req installPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	h.handle.Write(func(f *framework.Framework) {
		f.Database.InstallPath = req.Path
	})
	h.logger.Info("install path updated", zap.String("path", req.Path))
	writeJSON(w, http.StatusOK, installPathRequest{Path: req.Path})
}
