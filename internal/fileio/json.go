package fileio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"merge-service/internal/merge/model"
)

// readJSON: массив объектов, либо объект с полем-массивом объектов, либо один объект.
// Порядок колонок — порядок первого появления ключей.
func readJSON(r io.Reader) (*model.Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(bytes.TrimPrefix(b, []byte("\xef\xbb\xbf")))
	if len(b) == 0 {
		return &model.Table{}, nil
	}
	switch b[0] {
	case '[':
		return tableFromArray(b)
	case '{':
		if arr, ok, err := findRecordsField(b); err != nil {
			return nil, err
		} else if ok {
			return tableFromArray(arr)
		}
		t := &model.Table{}
		if err := appendObject(t, map[string]bool{}, b); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, errors.New("json: expected array or object")
	}
}

// readJSONLines: по объекту на строку, пустые строки пропускаются.
func readJSONLines(r io.Reader) (*model.Table, error) {
	t := &model.Table{}
	seen := map[string]bool{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		if err := appendObject(t, seen, b); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return t, sc.Err()
}

func tableFromArray(b []byte) (*model.Table, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	t := &model.Table{}
	seen := map[string]bool{}
	for i, raw := range items {
		if err := appendObject(t, seen, raw); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return t, nil
}

// findRecordsField — первое поле верхнего объекта, значение которого массив объектов.
func findRecordsField(b []byte) (json.RawMessage, bool, error) {
	keys, vals, err := decodeObject(b, true)
	if err != nil {
		return nil, false, err
	}
	for _, k := range keys {
		raw, _ := vals[k].(json.RawMessage)
		raw = bytes.TrimSpace(raw)
		if len(raw) > 1 && raw[0] == '[' {
			var probe []json.RawMessage
			if json.Unmarshal(raw, &probe) == nil && (len(probe) == 0 || bytes.HasPrefix(bytes.TrimSpace(probe[0]), []byte("{"))) {
				return raw, true, nil
			}
		}
	}
	return nil, false, nil
}

func appendObject(t *model.Table, seen map[string]bool, b []byte) error {
	keys, vals, err := decodeObject(b, false)
	if err != nil {
		return err
	}
	row := make(model.Row, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			t.Columns = append(t.Columns, k)
		}
		row[k] = vals[k]
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// decodeObject разбирает объект потоково, чтобы сохранить порядок ключей.
// raw=true оставляет значения как json.RawMessage.
func decodeObject(b []byte, raw bool) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("json: record is not an object")
	}
	var keys []string
	vals := map[string]any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		k, _ := tok.(string)
		if _, dup := vals[k]; !dup {
			keys = append(keys, k)
		}
		if raw {
			var m json.RawMessage
			if err := dec.Decode(&m); err != nil {
				return nil, nil, err
			}
			vals[k] = m
			continue
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		vals[k] = scalar(v)
	}
	return keys, vals, nil
}

// scalar: числа -> int64/float64, вложенные структуры -> компактный JSON-текст.
func scalar(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return v
	}
}
