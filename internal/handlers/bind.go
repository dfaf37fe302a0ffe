package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

var errTrailingData = errors.New("invalid JSON: unexpected data after top-level value")

// RegisterValidators makes gin's JSON binding reject unknown fields and adds the
// custom rules used by dto binding tags.
func RegisterValidators() {
	registerOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", validators.NotBlank)
		}
	})
}

// bindJSON binds the body into req like ShouldBindJSON. An empty body binds as {}
// and anything after the first JSON value is rejected.
func bindJSON(c *gin.Context, req any) error {
	if c.Request.Body == nil {
		return binding.Validator.ValidateStruct(req)
	}
	err := c.ShouldBindBodyWith(req, binding.JSON)
	if errors.Is(err, io.EOF) {
		return binding.Validator.ValidateStruct(req)
	}
	if err != nil && !isValidationErr(err) {
		return err
	}
	if body, ok := c.Get(gin.BodyBytesKey); ok {
		if b, _ := body.([]byte); !json.Valid(b) {
			return errTrailingData
		}
	}
	return err
}

func isValidationErr(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}
