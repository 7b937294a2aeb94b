package domain

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrUnitExists     = errors.New("unit already registered")
	ErrInvalidSetting = errors.New("invalid setting value")
)
