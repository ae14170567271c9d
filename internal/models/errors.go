package models

import "errors"

var ErrReminderNotFound = errors.New("reminder not found")
