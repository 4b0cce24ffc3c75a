package optimize

import (
	"errors"
	"fmt"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// ValidationError некорректные параметры Start
type ValidationError = pkgapi.ValidationError

// ErrEmptyResult результат оценки без улучшений или рекомендаций
var ErrEmptyResult = errors.New("optimization result must contain improvements and suggestions")

// InvalidStateError операция недопустима в текущем состоянии
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s optimization in state %s", e.Op, e.State)
}
