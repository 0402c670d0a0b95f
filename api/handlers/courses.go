package handlers

import (
	"net/http"

	services "github.com/campus-hub/campus-services/api/services"
	_ "github.com/lib/pq"
)

func CreateCourse(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateCourseService(svc, w, r)
	}
}

func GetCourses(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetCoursesService(svc, w, r)
	}
}

func GetCourseFiles(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetCourseFilesService(svc, w, r)
	}
}

func ReplaceCourseFile(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ReplaceCourseFileService(svc, w, r)
	}
}

func DeleteCourseFile(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteCourseFileService(svc, w, r)
	}
}

func DeleteCourse(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteCourseService(svc, w, r)
	}
}
