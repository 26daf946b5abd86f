package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abhisek/questgen/internal/curriculum"
	"github.com/abhisek/questgen/internal/pipeline"
)

const maxBodyBytes = 1 << 20

type handler struct {
	pipeline   Runner
	classifier Classifier
	skills     curriculum.Store
	logger     *zap.Logger
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runPipeline always returns the Result body. The status reflects how far
// the run got: 400 for invalid input, 502 when no question could be
// produced, 422 when the question could not be normalized.
func (h *handler) runPipeline(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.pipeline.Run(r.Context(), req)
	writeJSON(w, pipelineStatus(res), res)
}

func pipelineStatus(res *pipeline.Result) int {
	switch {
	case res.Success:
		return http.StatusOK
	case !res.Stages.UserSelection || !res.Stages.SkillContext:
		return http.StatusBadRequest
	case !res.Stages.AIGeneration:
		return http.StatusBadGateway
	case !res.Stages.ContentConversion:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type classifyRequest struct {
	Grade     string `json:"grade"`
	Subject   string `json:"subject"`
	SkillName string `json:"skill_name"`
}

type classifyResponse struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
}

func (h *handler) classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tag := h.classifier.Classify(req.Grade, req.Subject, req.SkillName)
	writeJSON(w, http.StatusOK, classifyResponse{Type: string(tag), DisplayName: tag.DisplayName()})
}

func (h *handler) listSkills(w http.ResponseWriter, r *http.Request) {
	grade := strings.TrimSpace(r.URL.Query().Get("grade"))
	subject := strings.TrimSpace(r.URL.Query().Get("subject"))
	if grade == "" || subject == "" {
		writeError(w, http.StatusBadRequest, "grade and subject are required")
		return
	}

	skills, err := h.skills.Skills(r.Context(), grade, subject)
	if err != nil {
		h.logger.Error("list skills", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load skills")
		return
	}
	if skills == nil {
		skills = []curriculum.Skill{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"skills": skills})
}

func (h *handler) getSkill(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	skill, err := h.skills.SkillByID(r.Context(), id)
	if errors.Is(err, curriculum.ErrSkillNotFound) {
		writeError(w, http.StatusNotFound, "skill not found")
		return
	}
	if err != nil {
		h.logger.Error("get skill", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load skill")
		return
	}
	writeJSON(w, http.StatusOK, skill)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
