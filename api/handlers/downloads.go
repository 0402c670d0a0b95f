package handlers

import (
	"net/http"

	services "github.com/campus-hub/campus-services/api/services"
)

func RegisterDownload(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.RegisterDownloadService(svc, w, r)
	}
}

func RedeemDownload(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.RedeemDownloadService(svc, w, r)
	}
}
