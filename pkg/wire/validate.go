package wire

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid wraps every validation failure so callers can distinguish
// local payload errors from transport errors with errors.Is.
var ErrInvalid = errors.New("wire: invalid payload")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their wire name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// ids: every entry positive, no duplicates.
	must(v.RegisterValidation("ids", func(fl validator.FieldLevel) bool {
		ids, ok := fl.Field().Interface().([]int64)
		if !ok {
			return false
		}
		seen := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			if id < 1 {
				return false
			}
			if _, dup := seen[id]; dup {
				return false
			}
			seen[id] = struct{}{}
		}
		return true
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate checks a request payload against its field rules. It returns nil
// for valid payloads and an ErrInvalid-wrapped error naming the first
// offending field otherwise. A payload that fails Validate must never be
// transmitted.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	fe := fields[0]
	return fmt.Errorf("%w: %s %s", ErrInvalid, fe.Field(), ruleMessage(fe))
}

// ruleMessage renders the user-facing message for a failed rule, matching
// the wording the server uses for the same rules.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		switch fe.Kind() {
		case reflect.String:
			min, max := boundsFor(fe.StructNamespace())
			return fmt.Sprintf("must be between %s and %s characters", min, max)
		case reflect.Slice:
			return fmt.Sprintf("must have at least %s members", fe.Param())
		default:
			return "invalid ID"
		}
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ",")
	case "ids":
		return "must be greater than 0 and not contain duplicate numbers"
	}
	return "is invalid"
}

// boundsFor recovers both ends of a string length rule from the struct tag,
// since a FieldError only carries the parameter of the rule that failed.
func boundsFor(namespace string) (min, max string) {
	min, max = "?", "?"
	parts := strings.SplitN(namespace, ".", 2)
	if len(parts) != 2 {
		return
	}
	structName, fieldName := parts[0], parts[1]
	typ, ok := payloadTypes[structName]
	if !ok {
		return
	}
	fld, ok := typ.FieldByName(fieldName)
	if !ok {
		return
	}
	for _, rule := range strings.Split(fld.Tag.Get("validate"), ",") {
		if v, found := strings.CutPrefix(rule, "min="); found {
			min = v
		}
		if v, found := strings.CutPrefix(rule, "max="); found {
			max = v
		}
	}
	return
}

// payloadTypes indexes every validated request type by name for boundsFor.
var payloadTypes = func() map[string]reflect.Type {
	types := []any{
		NewMessageRequest{},
		NewRoomRequest{},
		NewRoomNameRequest{},
		DeleteRoomRequest{},
		LeaveRoomRequest{},
		AddMembersRequest{},
		DeleteMembersRequest{},
		AddFriendRequest{},
		AcceptFriendRequest{},
		RefuseFriendRequest{},
		DeleteFriendRequest{},
		RegisterRequest{},
		LoginRequest{},
		GetUserByNameRequest{},
	}
	m := make(map[string]reflect.Type, len(types))
	for _, t := range types {
		rt := reflect.TypeOf(t)
		m[rt.Name()] = rt
	}
	return m
}()
