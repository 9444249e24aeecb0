package validation

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Student number: campus id cards use letters, digits and dashes
	StudentNumberPattern = `^[A-Za-z0-9-]{3,32}$`

	// Username: 2..50 characters
	UsernamePattern = `^[A-Za-z0-9._-]{2,50}$`

	// Password min length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	StudentNumber *regexp.Regexp
	Username      *regexp.Regexp
}{
	StudentNumber: regexp.MustCompile(StudentNumberPattern),
	Username:      regexp.MustCompile(UsernamePattern),
}

// Rules maps custom validator tags onto their checks
var Rules = map[string]*regexp.Regexp{
	"student_number": CompiledPatterns.StudentNumber,
	"username":       CompiledPatterns.Username,
}

var registerOnce sync.Once

// Register installs the custom tags on v
func Register(v *validator.Validate) error {
	for tag, pattern := range Rules {
		pattern := pattern
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return pattern.MatchString(fl.Field().String())
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// RegisterGinRules installs the custom tags on gin's default validator engine once
func RegisterGinRules() error {
	var err error
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			err = Register(v)
		}
	})
	return err
}
