package model

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Payload is one decoded inbound JSON object.
type Payload map[string]interface{}

var errMissing = errors.New("required field missing")

// require is the strict lookup: the key must hold a non-empty string.
func (p Payload) require(entity, key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", malformed(entity, key, errMissing)
	}

	s, ok := v.(string)
	if !ok {
		return "", malformed(entity, key, fmt.Errorf("expected string, got %T", v))
	}

	if s == "" {
		return "", malformed(entity, key, errMissing)
	}

	return s, nil
}

// integralFloats refuses to truncate a JSON number with a fraction into an
// integer field.
func integralFloats(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.Float64 && from.Kind() != reflect.Float32 {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("expected integer, got %v", f)
	}

	return data, nil
}

// Decode fills output from the payload using the json struct tags. Absent
// or null keys leave the zero value, wrong types are an error.
func Decode(input interface{}, output interface{}) error {
	config := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(integralFloats),
		Metadata:   nil,
		Result:     output,
		TagName:    "json",
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

func decodeEntity(entity string, p Payload, output interface{}) error {
	if err := Decode(map[string]interface{}(p), output); err != nil {
		return malformed(entity, "", err)
	}

	return nil
}
