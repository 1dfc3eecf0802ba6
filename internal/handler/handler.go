// internal/handler/handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SyedDaiam9101/classifier-service/internal/classifier"
)

// PredictRequest is the body of POST /predict. Features is left undecoded
// beyond plain JSON so the validator can report element-level problems.
type PredictRequest struct {
	Features interface{} `json:"features"`
}

// Handler serves the prediction operation over HTTP and gRPC.
type Handler struct {
	svc *classifier.Service
}

// New creates a new Handler around the classifier service.
func New(svc *classifier.Service) *Handler {
	return &Handler{svc: svc}
}

// Predict handles POST /predict.
func (h *Handler) Predict(c *gin.Context) {
	ctx := c.Request.Context()

	// json.Unmarshal rejects trailing data after the top-level value.
	var req PredictRequest
	body, err := c.GetRawData()
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		writeError(c, h.svc.Reject(ctx, classifier.NewDecodeError(err)))
		return
	}

	pred, err := h.svc.PredictPayload(ctx, req.Features)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pred)
}
