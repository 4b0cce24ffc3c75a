package optimize

import (
	"sync"
	"time"
)

// Scheduler вызывает fn с заданным интервалом до вызова stop.
// stop не ждет завершения текущего вызова fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// TickerScheduler планировщик на time.Ticker
type TickerScheduler struct{}

// Every запускает горутину с тикером
func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// stop мог произойти одновременно с тиком
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
