package handlers

import (
	"net/http"

	services "github.com/campus-hub/campus-services/api/services"
)

func SetDisplayName(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.SetDisplayNameService(svc, w, r)
	}
}

func UpdateUserRole(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.UpdateUserRoleService(svc, w, r)
	}
}
