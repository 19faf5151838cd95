package availability

import (
	"errors"
)

var (
	ErrPlanNotFound = errors.New("floor plan not found")
)
