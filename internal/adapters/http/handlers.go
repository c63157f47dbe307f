package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/collab"
	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/execute"
)

type ExecuteRequest struct {
	SourceCode string `json:"sourceCode" binding:"required"`
	Language   string `json:"language" binding:"required"`
}

// ExecuteHandler runs one submission through the gateway and maps the
// error taxonomy onto status codes: bad input 400, upstream failure 500,
// poll budget exhausted 408. Upstream detail never reaches the caller.
func ExecuteHandler(svc *execute.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExecuteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing sourceCode or language"})
			return
		}

		result, err := svc.Run(c.Request.Context(), execute.Request{
			SourceCode: req.SourceCode,
			Language:   req.Language,
		})
		if err != nil {
			var badReq *execute.BadRequestError
			switch {
			case errors.As(err, &badReq):
				c.JSON(http.StatusBadRequest, gin.H{"error": badReq.Reason})
			case errors.Is(err, execute.ErrTimeout):
				c.JSON(http.StatusRequestTimeout, gin.H{"error": "Execution timeout"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Code execution failed"})
			}
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// RoomsHandler lists active rooms and member counts.
func RoomsHandler(reg *collab.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": reg.List()})
	}
}
