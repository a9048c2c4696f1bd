package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/bookclub/errors"
	"go.uber.org/zap"
)

const genericMessage = "Something went wrong. Try again later."

// JSON writes payload as the response body.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Message writes a {"message": ...} body.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// HandleErrors renders err as {"message": ...} and aborts the chain. Only the
// caller safe message of an *errs.Error reaches the client; causes are logged.
func HandleErrors(c *gin.Context, logger *zap.SugaredLogger, err error) {
	status := errs.StatusOf(err)
	message := genericMessage

	var e *errs.Error
	if errors.As(err, &e) {
		message = e.Message
		if cause := e.Cause(); cause != nil && logger != nil {
			logger.Errorw("request failed", "path", c.FullPath(), "status", status, "error", cause)
		}
	} else if logger != nil {
		logger.Errorw("request failed", "path", c.FullPath(), "status", status, "error", err)
	}

	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
