package handlers

import (
	"net/http"

	"github.com/hbapte/portfolio-api/internal/util"
)

// Response shapes vary by route on purpose: some legacy routes answer 200
// with a success:false body where others use a proper status. Each handler
// keeps its documented contract rather than unifying them.

func parseAndValidate(r *http.Request, dest any) error {
	if err := util.ParseJSON(r, dest); err != nil {
		return err
	}
	return util.ValidateStruct(dest)
}

func respondData(w http.ResponseWriter, status int, data any) {
	util.JSONResponse(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	util.JSONResponse(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

func respondInternalError(w http.ResponseWriter) {
	respondError(w, http.StatusInternalServerError, "Internal server error")
}
