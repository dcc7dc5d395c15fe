// Package validation converts binding errors into field-keyed validation results.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Rule names used in failures that do not come from validator tags.
const (
	RuleString = "string"
	RuleUnique = "unique"
	RuleJSON   = "json"
	RuleInt    = "integer"
)

// RuleMaxBytes limits the UTF-8 byte length of a string. The built-in max
// counts runes, which is not what bcrypt's 72 byte limit means.
const RuleMaxBytes = "max_bytes"

// BodyField is the pseudo field used when the whole payload is unreadable.
const BodyField = "body"

var initOnce sync.Once

// Init configures the validator behind gin's binding so that field errors
// carry JSON names and the custom rules are registered. It is safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// 登録は固定のタグ名と関数なので失敗しない
		_ = v.RegisterValidation(RuleMaxBytes, maxBytes)
	})
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Failure is one broken rule.
type Failure struct {
	Field   string
	Rule    string
	Message string
}

// Result is an ordered list of failures.
type Result struct {
	failures []Failure
}

// Add records a failure.
func (r *Result) Add(field, rule, message string) {
	r.failures = append(r.failures, Failure{Field: field, Rule: rule, Message: message})
}

// OK reports whether no rule failed.
func (r *Result) OK() bool { return len(r.failures) == 0 }

// Failures returns the failures in the order they were recorded.
func (r *Result) Failures() []Failure {
	out := make([]Failure, len(r.failures))
	copy(out, r.failures)
	return out
}

// HasField reports whether field has at least one failure.
func (r *Result) HasField(field string) bool {
	for _, f := range r.failures {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Errors groups the messages by field.
func (r *Result) Errors() map[string][]string {
	if r.OK() {
		return nil
	}
	out := make(map[string][]string)
	for _, f := range r.failures {
		out[f.Field] = append(out[f.Field], f.Message)
	}
	return out
}

// FromError converts an error returned by gin binding into a Result.
// A nil error yields an empty Result.
func FromError(err error) *Result {
	res := &Result{}
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			res.Add(fe.Field(), fe.Tag(), Message(fe.Field(), fe.Tag(), fe.Param()))
		}
		return res
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		field := ute.Field
		rule := RuleString
		if ute.Type != nil && isNumberKind(ute.Type.Kind()) {
			rule = RuleInt
		}
		res.Add(field, rule, Message(field, rule, ""))
		return res
	}

	res.Add(BodyField, RuleJSON, Message(BodyField, RuleJSON, ""))
	return res
}

// Message returns the human readable message for a broken rule.
func Message(field, rule, param string) string {
	attr := strings.ReplaceAll(field, "_", " ")
	switch rule {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", attr)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", attr, param)
	case RuleMaxBytes:
		return fmt.Sprintf("The %s field must not be greater than %s bytes.", attr, param)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", attr, param)
	case "gte":
		return fmt.Sprintf("The %s field must be at least %s.", attr, param)
	case RuleString:
		return fmt.Sprintf("The %s field must be a string.", attr)
	case RuleInt:
		return fmt.Sprintf("The %s field must be an integer.", attr)
	case RuleUnique:
		return fmt.Sprintf("The %s has already been taken.", attr)
	case RuleJSON:
		return "The request body must be valid JSON."
	default:
		return fmt.Sprintf("The %s field is invalid.", attr)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
