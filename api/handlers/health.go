package handlers

import (
	"net/http"

	services "github.com/campus-hub/campus-services/api/services"
)

func GetHealth(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetHealthService(svc, w, r)
	}
}
