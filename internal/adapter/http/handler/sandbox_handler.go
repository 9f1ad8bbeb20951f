package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"connect-client/internal/adapter/http/dto"
	"connect-client/internal/adapter/http/middleware"
	"connect-client/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

// SandboxHandler answers signed requests the way the Connect server shapes
// its replies, without any shipping logic behind them.
type SandboxHandler struct{}

func NewSandboxHandler() *SandboxHandler {
	return &SandboxHandler{}
}

// ConnectionTest handles GET /connection/test.
func (h *SandboxHandler) ConnectionTest(c *gin.Context) {
	response.OK(c, true)
}

// LabelStatus handles GET /shipping/label/:id.
func (h *SandboxHandler) LabelStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "label_not_found", "Unknown label id", nil)
		return
	}
	response.OK(c, dto.LabelStatus{LabelID: id, Status: "PURCHASED"})
}

// Fail handles POST /sandbox/fail/:status and replies with that status and an error envelope.
func (h *SandboxHandler) Fail(c *gin.Context) {
	status, err := strconv.Atoi(c.Param("status"))
	if err != nil || status < 400 || status > 599 {
		response.Fail(c, http.StatusBadRequest, "invalid_status", "Status must be between 400 and 599", nil)
		return
	}
	response.Fail(c, status, "sandbox_failure", "Failure requested", map[string]int{"status": status})
}

// Echo reflects any other signed request. POST and PUT bodies must be JSON objects.
func (h *SandboxHandler) Echo(c *gin.Context) {
	resp := dto.EchoResponse{
		Method:         c.Request.Method,
		Path:           c.Request.URL.Path,
		TokenKey:       c.GetString(middleware.CtxTokenKey),
		APIVersion:     c.GetInt(middleware.CtxAPIVersion),
		ExternalUserID: c.GetInt64(middleware.CtxExternalUserID),
	}

	if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut {
		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid_body", "Unable to read request body", nil)
			return
		}
		if len(raw) > 0 {
			var body map[string]any
			if err := json.Unmarshal(raw, &body); err != nil {
				response.Fail(c, http.StatusBadRequest, "invalid_body", "Request body must be a JSON object", nil)
				return
			}
			resp.Body = body
		}
	}

	response.OK(c, resp)
}
