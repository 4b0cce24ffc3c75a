// Package optimize управляет жизненным циклом оптимизации резюме и писем:
// Idle -> Running -> Completed | Cancelled | Failed.
package optimize

// State состояние прогона оптимизации
type State int

// Состояния контроллера
const (
	Idle State = iota
	Running
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal сообщает, что прогон завершен и нужен Reset
func (s State) Terminal() bool {
	return s == Completed || s == Cancelled || s == Failed
}
