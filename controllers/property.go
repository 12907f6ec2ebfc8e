package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/search"
	"github.com/dcode-github/cozycorner/services"
	"github.com/gorilla/mux"
)

const maxMultipartMemory = 32 << 20

// SearchProperties serves every listing search: the public list, the
// search page and the admin view share one filter contract.
func SearchProperties(properties *services.PropertyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := search.ParseFilters(r.URL.Query())
		if err != nil {
			writeError(w, r, err)
			return
		}

		page, err := properties.Search(r.Context(), filters)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func GetProperty(properties *services.PropertyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := properties.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func MyProperties(properties *services.PropertyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		list, err := properties.ListByLandlord(r.Context(), caller)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func CreateProperty(properties *services.PropertyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		var in services.CreatePropertyInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		p, err := properties.Create(r.Context(), caller, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func UpdateProperty(properties *services.PropertyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		var u models.PropertyUpdate
		if err := decodeJSON(r, &u); err != nil {
			writeError(w, r, err)
			return
		}

		p, err := properties.Update(r.Context(), caller, mux.Vars(r)["id"], u)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func DeleteProperty(properties *services.PropertyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		if err := properties.Delete(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type approveRequest struct {
	Verified *bool `json:"verified"`
}

func ApproveProperty(properties *services.PropertyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		var req approveRequest
		if err := decodeJSON(r, &req); err != nil || req.Verified == nil {
			writeError(w, r, apperrors.Validation("verified must be a boolean"))
			return
		}

		p, err := properties.Approve(r.Context(), caller, mux.Vars(r)["id"], *req.Verified)
		if err != nil {
			writeError(w, r, err)
			return
		}
		logger.FromContext(r.Context()).Info("property verification changed", "property_id", p.ID.Hex(), "verified", p.Verified)
		writeJSON(w, http.StatusOK, p)
	}
}

func UploadImages(uploads *services.UploadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, r, apperrors.Validation("Invalid multipart form"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		headers := r.MultipartForm.File["images"]
		files, closeAll, err := openFiles(headers)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer closeAll()

		urls, err := uploads.UploadImages(r.Context(), caller, files)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"urls": urls})
	}
}

func UploadDocument(uploads *services.UploadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := session(w, r)
		if !ok {
			return
		}
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, r, apperrors.Validation("Invalid multipart form"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		var doc *services.UploadFile
		headers := r.MultipartForm.File["document"]
		if len(headers) > 0 {
			files, closeAll, err := openFiles(headers[:1])
			if err != nil {
				writeError(w, r, err)
				return
			}
			defer closeAll()
			doc = &files[0]
		}

		url, err := uploads.UploadDocument(r.Context(), caller, doc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"documentUrl": url})
	}
}

func openFiles(headers []*multipart.FileHeader) ([]services.UploadFile, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, nil, apperrors.Validation("Could not read file %s", h.Filename)
		}
		opened = append(opened, f)
		files = append(files, services.UploadFile{Name: h.Filename, Size: h.Size, Reader: f})
	}
	return files, closeAll, nil
}
