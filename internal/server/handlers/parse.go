package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/agentstation/driftmap/internal/server/response"
	"github.com/agentstation/driftmap/pkg/changelog"
)

// ParseRequest is the JSON form of the POST /api/v1/parse body. Any other
// content type is read as the raw log text.
type ParseRequest struct {
	Log string `json:"log"`
}

// HandleParse handles POST /api/v1/parse.
// @Summary Parse a change log
// @Description Parse a raw change log into property diffs
// @Tags parse
// @Accept json,plain
// @Produce json
// @Param request body ParseRequest true "Change log"
// @Success 200 {object} response.Response{data=changelog.Result}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 413 {object} response.Response{error=response.Error}
// @Router /api/v1/parse [post].
func (h *Handlers) HandleParse(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer func() { _ = body.Close() }()

	raw, err := readLog(r, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			response.RequestTooLarge(w, err.Error())
		case errors.Is(err, io.EOF):
			response.BadRequest(w, "Request body is empty", "")
		default:
			response.BadRequest(w, "Invalid request body", err.Error())
		}
		return
	}

	result := changelog.ParseWithStats(raw)
	if result.Diffs == nil {
		result.Diffs = []changelog.PropertyDiff{}
	}
	if result.Dropped > 0 {
		h.logger.Debug().Int("dropped", result.Dropped).Msg("Dropped unreadable log blocks")
	}
	response.OK(w, result)
}

func readLog(r *http.Request, body io.Reader) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req ParseRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return "", err
		}
		return req.Log, nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
