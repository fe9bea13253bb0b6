package patch

import (
	"bytes"
	"encoding/json"
)

// Field distingue los tres estados de un campo en un PATCH:
//   - ausente en el JSON      => Present=false (no tocar)
//   - presente con null       => Present=true, Value=nil (limpiar)
//   - presente con un valor   => Present=true, Value!=nil
type Field[T any] struct {
	Present bool
	Value   *T
}

func Set[T any](v T) Field[T] { return Field[T]{Present: true, Value: &v} }

func Null[T any]() Field[T] { return Field[T]{Present: true} }

// UnmarshalJSON solo se invoca si la key existe, incluso con null.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

func (f Field[T]) IsNull() bool { return f.Present && f.Value == nil }

// Apply escribe sobre un campo no anulable; null lo deja en el valor cero.
func (f Field[T]) Apply(dst *T) {
	if !f.Present {
		return
	}
	if f.Value == nil {
		var zero T
		*dst = zero
		return
	}
	*dst = *f.Value
}

// ApplyPtr escribe sobre un campo anulable; null lo limpia.
func (f Field[T]) ApplyPtr(dst **T) {
	if !f.Present {
		return
	}
	if f.Value == nil {
		*dst = nil
		return
	}
	v := *f.Value
	*dst = &v
}
