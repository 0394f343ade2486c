package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingRequired — обязательная колонка не найдена ни в одном источнике.
	ErrMissingRequired = errors.New("missing required columns")
	// ErrExport — сбой записи в один из приёмников.
	ErrExport = errors.New("export failed")
	// ErrInvalidConfig — недопустимые параметры задания.
	ErrInvalidConfig = errors.New("invalid merge config")
	// ErrNoSources — нечего сливать.
	ErrNoSources = errors.New("no source tables")
)

// SchemaError — фатальная ошибка схемы, задание прерывается до слияния.
type SchemaError struct {
	Missing []string
	Sources []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("halted: missing required columns [%s] in all of [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Sources, ", "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrMissingRequired }

// ExportError — ошибка одного приёмника; остальные приёмники и таблица не затрагиваются.
type ExportError struct {
	Sink string
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s to %s: %v", e.Sink, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

func (e *ExportError) Is(target error) bool { return target == ErrExport }

// ConfigError описывает конкретное недопустимое поле.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config %s: %s", e.Field, e.Reason) }

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }
