package handlers

import (
	"net/http"

	"github.com/bigkaa/medhistory/portal-module/internal/ui/guard"
	uimiddleware "github.com/bigkaa/medhistory/portal-module/internal/ui/middleware"
)

// HandleDashboard — GET /dashboard. Своего содержимого нет:
// redirect на страницу роли или на публичную точку входа.
func HandleDashboard(w http.ResponseWriter, r *http.Request) {
	uimiddleware.Redirect(w, r, guard.ResolveDashboard(uimiddleware.SessionFromContext(r.Context())))
}
