package model

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const maxReprDepth = 8

var timeType = reflect.TypeOf(time.Time{})

// Repr renders any entity for debugging as Type{Field: value, ...}. Only
// exported fields are listed, in declaration order, so the output is stable
// for equal values.
func Repr(v interface{}) string {
	var b strings.Builder

	writeRepr(&b, reflect.ValueOf(v), 0)

	return b.String()
}

func writeRepr(b *strings.Builder, v reflect.Value, depth int) {
	if !v.IsValid() {
		b.WriteString("nil")
		return
	}

	if depth > maxReprDepth {
		b.WriteString("...")
		return
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}

		writeRepr(b, v.Elem(), depth)
	case reflect.Struct:
		if v.Type() == timeType {
			b.WriteString(v.Interface().(time.Time).Format(time.RFC3339Nano))
			return
		}

		writeStruct(b, v, depth)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			b.WriteString("[]")
			return
		}

		b.WriteByte('[')

		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}

			writeRepr(b, v.Index(i), depth+1)
		}

		b.WriteByte(']')
	case reflect.String:
		b.WriteString(strconv.Quote(v.String()))
	default:
		if v.CanInterface() {
			fmt.Fprintf(b, "%v", v.Interface())
			return
		}

		b.WriteString(v.String())
	}
}

func writeStruct(b *strings.Builder, v reflect.Value, depth int) {
	t := v.Type()

	b.WriteString(t.Name())
	b.WriteByte('{')

	first := true

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		if !first {
			b.WriteString(", ")
		}

		first = false

		b.WriteString(f.Name)
		b.WriteString(": ")
		writeRepr(b, v.Field(i), depth+1)
	}

	b.WriteByte('}')
}
