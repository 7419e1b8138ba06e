package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"localMarketplace/internal/storage"
)

type upload struct {
	file multipart.File
	name string
	size int64
}

// readImage extracts one image from a multipart form, bounded by MaxUploadSize.
// On failure it has already written the response.
func (h *Handlers) readImage(w http.ResponseWriter, r *http.Request, field string) (*upload, bool) {
	// setting the size limit from the config
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, fmt.Sprintf("Файл слишком большой (макс. %d MB)",
				h.Cfg.MaxUploadSize/(1024*1024)), http.StatusBadRequest)
		} else {
			WriteError(w, "Ошибка при обработке файла", http.StatusBadRequest)
		}
		return nil, false
	}

	// getting the file
	file, header, err := r.FormFile(field)
	if err != nil {
		WriteError(w, "Не удалось получить файл", http.StatusBadRequest)
		return nil, false
	}

	if header.Size > h.Cfg.MaxUploadSize {
		file.Close()
		WriteError(w, fmt.Sprintf("Файл слишком большой (макс. %d MB)",
			h.Cfg.MaxUploadSize/(1024*1024)), http.StatusBadRequest)
		return nil, false
	}

	// check formats
	if _, err := storage.ContentType(header.Filename); err != nil {
		file.Close()
		WriteError(w, "Неподдерживаемый тип файла. Разрешены: JPEG, PNG, GIF, WebP", http.StatusBadRequest)
		return nil, false
	}

	return &upload{file: file, name: header.Filename, size: header.Size}, true
}
