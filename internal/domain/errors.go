package domain

import "errors"

var (
	// ErrValidation некорректная форма входных данных (ошибка вызывающего)
	ErrValidation = errors.New("validation error")
	// ErrDecode повреждённый или чужой блоб
	ErrDecode = errors.New("decode error")
	// ErrEncoding текстовое кодирование дало непригодный результат
	ErrEncoding = errors.New("encoding error")
)
