package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type rangeShape struct {
	Start any `validate:"required_without=End"`
	End   any `validate:"required_without=Start"`
}

type selectorShape struct {
	Items []string `validate:"dive,required"`
}

// Validate checks the shape of every recognised parameter. Unknown
// parameters are ignored, the same way Compile ignores them.
func Validate(schema Schema, params map[string]any) error {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	slices.Sort(names)

	for _, name := range names {
		f, ok := schema[name]
		if !ok {
			continue
		}
		v := params[name]
		if v == nil {
			continue
		}
		if err := validateField(f, v); err != nil {
			return InvalidFilterError(name, err)
		}
	}
	return nil
}

func validateField(f Field, v any) error {
	switch f.Semantics {
	case SemIn:
		if _, ok := toStrings(v); !ok {
			return errors.New("must be a string or a list of strings")
		}

	case SemLike, SemText:
		if _, ok := v.(string); !ok {
			return errors.New("must be a string")
		}

	case SemRange:
		var r Range
		if err := decodeStrict(v, &r); err != nil {
			return err
		}
		r.normalize()
		if err := validate.Struct(rangeShape{Start: r.Start, End: r.End}); err != nil {
			return errors.New("range needs a start or an end bound")
		}
		if _, ok := toBound(r.Start, r.IncludeStart); !ok {
			return errors.New("start must be a string or a number")
		}
		if _, ok := toBound(r.End, r.IncludeEnd); !ok {
			return errors.New("end must be a string or a number")
		}

	case SemSelect:
		var sel Selector
		if err := decodeStrict(v, &sel); err != nil {
			return err
		}
		// an empty list is allowed, a missing one is not
		if _, ok := v.(map[string]any)["items"]; !ok {
			return errors.New("items is required")
		}
		if err := validate.Struct(selectorShape{Items: sel.Items}); err != nil {
			return fieldErrors(err)
		}
	}
	return nil
}

func decodeStrict(v any, out any) error {
	if _, ok := v.(map[string]any); !ok {
		return errors.New("must be an object")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(v)
}

func fieldErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s'",
			strings.ToLower(fe.Field()), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
