package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes and validates the body, answering 400 with the offending
// fields when it cannot.
func BindJSON(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		RespondBadRequest(c, "Invalid request body", parseBindError(err, out, "json"))
		return false
	}
	return true
}

// BindForm is BindJSON for multipart and urlencoded bodies.
func BindForm(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindWith(out, binding.FormMultipart); err != nil {
		RespondBadRequest(c, "Invalid form data", parseBindError(err, out, "form"))
		return false
	}
	return true
}

// BindQuery validates query parameters.
func BindQuery(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindQuery(out); err != nil {
		RespondBadRequest(c, "Invalid query parameters", parseBindError(err, out, "form"))
		return false
	}
	return true
}

func parseBindError(err error, out interface{}, tagName string) interface{} {
	rootType := baseStructType(out)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]FieldError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, FieldError{
				Field:   fieldName(rootType, fe, tagName),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
		}
		return gin.H{"fields": fields}
	}

	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		field := strings.TrimSpace(typeError.Field)
		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeError.Type.String()),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Kind() == reflect.Struct {
		return t
	}
	return nil
}

// fieldName maps a validator namespace such as "Payment.Transaction" to the
// name the client sent.
func fieldName(rootType reflect.Type, fe validator.FieldError, tagName string) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 0 && rootType != nil && parts[0] == rootType.Name() {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return fe.Field()
	}

	current := rootType
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		name := part
		if current != nil && current.Kind() == reflect.Struct {
			if sf, ok := current.FieldByName(part); ok {
				name = tagFieldName(sf, tagName)
				current = sf.Type
				for current.Kind() == reflect.Pointer {
					current = current.Elem()
				}
			} else {
				current = nil
			}
		}
		out = append(out, name)
	}
	return strings.Join(out, ".")
}

func tagFieldName(sf reflect.StructField, tagName string) string {
	name, _, _ := strings.Cut(sf.Tag.Get(tagName), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + param
	case "max":
		return "must be at most " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
