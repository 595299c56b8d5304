package repository

import "errors"

// レコードが存在しないことを統一して表す
var ErrNotFound = errors.New("not found")
