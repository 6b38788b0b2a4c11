package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK        = "ok"
	ResultNotFound  = "not_found"
	ResultForbidden = "forbidden"
	ResultError     = "error"
)

var (
	// Операции жизненного цикла заметок
	NoteOperationsCounterVec = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "note_operations_total",
			Help: "Number of note lifecycle operations by result",
		},
		[]string{"operation", "result"},
	)

	// Уведомления, отправленные в чат администраторов
	SentNoticesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_notices_sent_total",
			Help: "Number of lifecycle notices delivered to the admin chat",
		},
		[]string{"event"},
	)
)

func Init() {
	prometheus.MustRegister(NoteOperationsCounterVec)
	prometheus.MustRegister(SentNoticesCounter)
}

func ObserveOperation(operation, result string) {
	NoteOperationsCounterVec.WithLabelValues(operation, result).Inc()
}

func NoticeSent(event string) {
	SentNoticesCounter.WithLabelValues(event).Inc()
}
