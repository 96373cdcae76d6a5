package dto

// ExportUploadResponse respuesta cuando la exportación se sube al almacenamiento.
type ExportUploadResponse struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}
