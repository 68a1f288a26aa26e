package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/wallproof/internal/constants"
	"github.com/kozaktomas/wallproof/internal/database"
)

// ConfigurationsHandler stores and returns wallpaper configurations.
type ConfigurationsHandler struct{}

// NewConfigurationsHandler creates a new configurations handler.
func NewConfigurationsHandler() *ConfigurationsHandler {
	return &ConfigurationsHandler{}
}

func getConfigurationWriter(r *http.Request, w http.ResponseWriter) database.ConfigurationWriter {
	writer, err := database.GetConfigurationWriter(r.Context())
	if err != nil || writer == nil {
		respondError(w, http.StatusServiceUnavailable, "configuration storage not available")
		return nil
	}
	return writer
}

func getConfigurationReader(r *http.Request, w http.ResponseWriter) database.ConfigurationReader {
	reader, err := database.GetConfigurationReader(r.Context())
	if err != nil || reader == nil {
		respondError(w, http.StatusServiceUnavailable, "configuration storage not available")
		return nil
	}
	return reader
}

// loadConfiguration resolves the {id} URL parameter, writing the error
// response itself when the record cannot be returned.
func loadConfiguration(w http.ResponseWriter, r *http.Request) (database.ConfigurationReader, *database.Configuration) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return nil, nil
	}
	reader := getConfigurationReader(r, w)
	if reader == nil {
		return nil, nil
	}
	rec, err := reader.GetConfiguration(r.Context(), id)
	if err != nil {
		log.Printf("failed to get configuration %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to get configuration")
		return nil, nil
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "configuration not found")
		return nil, nil
	}
	return reader, rec
}

type createConfigurationResponse struct {
	ID        string `json:"id"`
	ShortCode string `json:"short_code"`
	ProofURL  string `json:"proof_url"`
}

// Create stores a configuration posted by the editor.
func (h *ConfigurationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxConfigurationBodySize)

	var rec database.Configuration
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "configuration too large")
			return
		}
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if err := rec.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	writer := getConfigurationWriter(r, w)
	if writer == nil {
		return
	}
	// Keys are always assigned by the store.
	rec.ID, rec.ShortCode = "", ""
	if err := writer.CreateConfiguration(r.Context(), &rec); err != nil {
		log.Printf("failed to store configuration: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to store configuration")
		return
	}

	respondJSON(w, http.StatusCreated, createConfigurationResponse{
		ID:        rec.ID,
		ShortCode: rec.ShortCode,
		ProofURL:  "/api/v1/configurations/" + rec.ShortCode + "/proof",
	})
}

// Get returns a configuration by ID or short code.
func (h *ConfigurationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, rec := loadConfiguration(w, r)
	if rec == nil {
		return
	}
	respondJSON(w, http.StatusOK, rec)
}
