package action

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator checks bound form structs. Errors are keyed by the `form` tag so
// they line up with the submitted field names.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := ParseAmount(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		_, err := ParseTimestamp(fl.Field().String(), time.UTC)
		return err == nil
	})
	return &Validator{validate: v}
}

// Check validates form and returns a State holding one message per failing
// field, taken from messages. Fields missing from messages fall back to the
// validator's own text.
func (v *Validator) Check(form interface{}, messages map[string]string) State {
	var state State
	err := v.validate.Struct(form)
	if err == nil {
		return state
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		state.AddError("form", "."+err.Error())
		return state
	}
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = fmt.Sprintf(".Invalid value for %s", fe.Field())
		}
		state.AddError(fe.Field(), msg)
	}
	return state
}

var errAmount = errors.New("amount must be a number greater than 0")

// MaxCents is the largest amount the INTEGER amount column holds.
const MaxCents = math.MaxInt32

// ParseAmount coerces a submitted amount in major units. It must be a finite
// number that rounds to between 1 and MaxCents cents.
func ParseAmount(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errAmount
	}
	if c := math.Round(f * 100); c < 1 || c > MaxCents {
		return 0, errAmount
	}
	return f, nil
}

// Cents converts major units to stored minor units, rounding half away from
// zero: 150.00 -> 15000, 19.99 -> 1999.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 and the datetime-local forms browsers
// submit. Values without a zone are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
