package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/gymdesk-backend/api/responses"
	"github.com/angelmondragon/gymdesk-backend/api/validators"
	"github.com/angelmondragon/gymdesk-backend/internal/activities"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

func ListActivities(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := validators.ParseQueryUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListActivities(r.Context(), activities.ListParams{
			MemberID: memberID,
			Type:     strings.TrimSpace(r.URL.Query().Get("type")),
			Limit:    limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapSlice(list, activityView))
	}
}
