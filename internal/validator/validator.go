package validator

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// engine pairs a validator with the translator its messages were registered on.
type engine struct {
	v     *govalidator.Validate
	trans ut.Translator
}

var (
	ginEngine *engine

	clientOnce   sync.Once
	clientEngine *engine
)

// Setup registers English translations on Gin's binding engine.
// Call once when starting the mock backend.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		ginEngine = configure(v)
	}
}

// client returns the standalone engine used before requests leave the client.
// It reads the same `binding` tags as Gin so request types are declared once.
func client() *engine {
	clientOnce.Do(func() {
		v := govalidator.New(govalidator.WithRequiredStructEnabled())
		v.SetTagName("binding")
		clientEngine = configure(v)
	})
	return clientEngine
}

func configure(v *govalidator.Validate) *engine {
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Each validator gets its own translator; registering twice on one fails.
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	return &engine{v: v, trans: trans}
}

// Struct validates dst against its binding tags.
// Returns nil on success or a field → message map on failure.
func Struct(dst interface{}) map[string]string {
	e := client()
	if err := e.v.Struct(dst); err != nil {
		return e.translate(err)
	}
	return nil
}

// TranslateErrors takes a binding/validation error produced by Gin and returns
// a map of field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	if ginEngine == nil {
		return map[string]string{"detail": err.Error()}
	}
	return ginEngine.translate(err)
}

func (e *engine) translate(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(e.trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// Error carries field-level validation failures as an error value.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Check is Struct wrapped as an error, for call sites that return early.
func Check(dst interface{}) error {
	if fields := Struct(dst); fields != nil {
		return &Error{Fields: fields}
	}
	return nil
}
