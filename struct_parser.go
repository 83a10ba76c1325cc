package antenna

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

const TagInertia = "inertia"

var (
	propDiscard   = "-"         //nolint:gochecknoglobals
	propOmitEmpty = "omitempty" //nolint:gochecknoglobals
	propLazy      = "lazy"      //nolint:gochecknoglobals
)

var lazyType = reflect.TypeFor[Lazy]() //nolint:gochecknoglobals

// ParseStruct converts a struct into Props using struct tags.
// It expects a struct pointer with JSON-encodable fields.
//
// Only fields tagged with "inertia" are included; untagged fields are ignored.
//
// Tag format: `inertia:"name[,lazy][,omitempty]"`
//
//   - name: Prop name sent to client. Use "-" to skip the field.
//   - lazy: The field must be a Lazy or LazyFunc and is wrapped into a
//     LazyProp, resolved only when a partial reload asks for it.
//   - omitempty: Skip the field if it holds its zero value.
//
// Example:
//
//	type PageProps struct {
//	    UserID    int      `inertia:"user_id"`
//	    Posts     []Post   `inertia:"posts"`
//	    Analytics LazyFunc `inertia:"analytics,lazy"`
//	    Banner    string   `inertia:"banner,omitempty"`
//	}
func ParseStruct(v any) (Props, error) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return nil, errors.New("antenna: msg must be a pointer")
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return nil, errors.New("antenna: msg must be a struct")
	}

	typ := val.Type()
	props := make(Props, typ.NumField())

	for i := range typ.NumField() {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !field.IsExported() {
			continue
		}

		inertiaTag := field.Tag.Get(TagInertia)
		if inertiaTag == "" {
			continue
		}

		parts := strings.Split(inertiaTag, ",")

		fieldName := field.Name
		if parts[0] != "" {
			fieldName = parts[0]
		}

		if fieldName == propDiscard {
			continue
		}

		flags := parts[1:]
		for _, flag := range flags {
			if flag != propLazy && flag != propOmitEmpty {
				return nil, fmt.Errorf("antenna: unknown tag option %q on field %s", flag, field.Name)
			}
		}

		if slices.Contains(flags, propOmitEmpty) && fieldVal.IsZero() {
			continue
		}

		if !slices.Contains(flags, propLazy) {
			props[fieldName] = fieldVal.Interface()
			continue
		}

		fn, err := toLazy(fieldVal)
		if err != nil {
			return nil, fmt.Errorf("antenna: field %s: %w", field.Name, err)
		}

		props[fieldName] = NewLazy(fn)
	}

	return props, nil
}

// toLazy converts a reflect.Value to a Lazy if the value is Lazy convertible.
func toLazy(v reflect.Value) (Lazy, error) {
	if v.IsZero() {
		return nil, errors.New("lazy value is nil")
	}

	if v.Type().Implements(lazyType) {
		lazy, ok := v.Interface().(Lazy)
		if !ok {
			return nil, errors.New("invalid lazy value")
		}

		return lazy, nil
	}

	if v.Kind() == reflect.Func && v.Type().ConvertibleTo(reflect.TypeFor[LazyFunc]()) {
		lazyFn, ok := v.Convert(reflect.TypeFor[LazyFunc]()).Interface().(LazyFunc)
		if !ok {
			return nil, errors.New("invalid lazy function")
		}

		return lazyFn, nil
	}

	return nil, errors.New("invalid lazy value")
}
