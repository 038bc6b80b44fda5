package response

import (
	"net/http"

	apperrors "paper-analytics/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response is the standard API response structure
type Response struct {
	Error  int32  `json:"error"`            // Error code (0 = success)
	Msg    string `json:"msg"`              // Human-readable message
	Detail string `json:"detail,omitempty"` // Additional error details
	Data   any    `json:"data"`             // Response payload
}

// Success returns a success response with data
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Error: 0,
		Msg:   "success",
		Data:  data,
	})
}

// FromError converts an error to a Response.
// AppErrors keep their code, message and detail; anything else is CodeUnknown.
func FromError(err error) Response {
	if err == nil {
		return Response{
			Error: 0,
			Msg:   "success",
		}
	}
	return Response{
		Error:  int32(apperrors.GetCode(err)),
		Msg:    apperrors.GetMessage(err),
		Detail: apperrors.GetDetail(err),
		Data:   nil,
	}
}

// ErrorResponse sends an error response from an error
func ErrorResponse(c *gin.Context, err error) {
	c.JSON(http.StatusOK, FromError(err))
}

// ErrorWithData sends an error response that still carries a payload, such
// as the state the workflow fell back to.
func ErrorWithData(c *gin.Context, err error, data any) {
	resp := FromError(err)
	resp.Data = data
	c.JSON(http.StatusOK, resp)
}
