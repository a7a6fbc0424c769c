package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Messages maps "Field.tag" (struct field name and failing tag) to a client-facing message.
type Messages map[string]string

// Struct validates v against its `validate` tags and returns one message per failing field,
// in field order. An empty result means v is valid.
func Struct(v interface{}, msgs Messages) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(ves))
	for _, fe := range ves {
		if m, ok := msgs[fe.StructField()+"."+fe.Tag()]; ok {
			out = append(out, m)
			continue
		}
		out = append(out, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
	}
	return out
}
